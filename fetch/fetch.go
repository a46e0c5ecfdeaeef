// Package fetch retrieves ccmz containers from remote sources. It sits
// outside the conversion pipeline: the core only ever sees bytes.
package fetch

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"
)

// Some file hosts reject Go's default client outright.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Fetch downloads the container at the given http(s) or s3 URL.
func Fetch(rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid url")
	}
	switch u.Scheme {
	case "http", "https":
		return fetchHTTP(rawURL)
	case "s3":
		return fetchS3(u.Host, strings.TrimPrefix(u.Path, "/"))
	default:
		return nil, errors.Errorf("unsupported url scheme: %q", u.Scheme)
	}
}

func fetchHTTP(rawURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("download failed with status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "download interrupted")
	}
	return data, nil
}

func fetchS3(bucket, key string) ([]byte, error) {
	sess, err := session.NewSession(&aws.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "could not create AWS session")
	}

	client := s3.New(sess)
	obj, err := client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not fetch s3://%v/%v", bucket, key)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return nil, errors.Wrap(err, "download interrupted")
	}
	return data, nil
}
