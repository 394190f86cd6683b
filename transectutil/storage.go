/*
Copyright © 2019 the InMAP authors.
This file is part of the InMAP transect tool.

The InMAP transect tool is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The InMAP transect tool is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with the InMAP transect tool.  If not, see <http://www.gnu.org/licenses/>.
*/

package transectutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// downloadRetries is the number of times a failed download is retried.
const downloadRetries = 3

// maybeDownload checks if path is an existing local file. If not, and
// path is a URL or blob storage location, it downloads the file and
// returns the path to the downloaded copy. For shapefiles, the
// associated .dbf, .shx, and .prj files are downloaded too and the path
// to the file with the ".shp" extension is returned.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	if path == "" {
		return path, nil
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		log.WithField("url", path).Info("downloading")
		return downloadHTTP(ctx, path)
	}
	if IsBlob(path) {
		log.WithField("url", path).Info("downloading")
		return downloadBlob(ctx, path)
	}
	return path, nil
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file.
func downloadHTTP(ctx context.Context, path string) (string, error) {
	dir, err := ioutil.TempDir("", "transect")
	if err != nil {
		return "", fmt.Errorf("transectutil: creating temporary download directory: %v", err)
	}
	fnames := expandShp(path)
	for i, fname := range fnames {
		local := filepath.Join(dir, filepath.Base(fname))
		err := retry(ctx, func() error { return getHTTP(ctx, fname, local) })
		if err != nil {
			if i > 0 && os.IsNotExist(err) {
				// Optional shapefile sidecar files.
				continue
			}
			return "", err
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

func getHTTP(ctx context.Context, fileURL, local string) error {
	req, err := http.NewRequest(http.MethodGet, fileURL, nil)
	if err != nil {
		return stop{fmt.Errorf("transectutil: downloading %s: %v", fileURL, err)}
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("transectutil: downloading %s: %v", fileURL, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return stop{os.ErrNotExist}
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("transectutil: downloading %s: %s", fileURL, resp.Status)
	}
	return copyToFile(local, resp.Body)
}

func copyToFile(local string, r io.Reader) error {
	w, err := os.Create(local)
	if err != nil {
		return stop{fmt.Errorf("transectutil: creating file for download: %v", err)}
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("transectutil: writing %s: %v", local, err)
	}
	return w.Close()
}

// stop wraps an error that should not be retried.
type stop struct{ err error }

func (s stop) Error() string { return s.err.Error() }

// retry runs f with exponential backoff until it succeeds, returns a
// stop error, or has failed downloadRetries times.
func retry(ctx context.Context, f func() error) error {
	var final error
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), downloadRetries), ctx)
	err := backoff.Retry(func() error {
		err := f()
		if s, ok := err.(stop); ok {
			final = s.err
			return nil
		}
		return err
	}, b)
	if final != nil {
		return final
	}
	return err
}

// IsBlob returns whether the given filename represents a blob
// (i.e., if it starts with 'gs://', 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("transectutil: opening bucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("transectutil: opening bucket: invalid provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, fmt.Errorf("transectutil: creating AWS session: %v", err)
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("transectutil: parsing blob path: %v", err)
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return "", err
	}
	dir, err := ioutil.TempDir("", "transect")
	if err != nil {
		return "", fmt.Errorf("transectutil: creating temporary download directory: %v", err)
	}
	fnames := expandShp(strings.TrimPrefix(u.Path, "/"))
	for i, key := range fnames {
		local := filepath.Join(dir, filepath.Base(key))
		err := retry(ctx, func() error {
			r, err := bucket.NewReader(ctx, key)
			if err != nil {
				if i > 0 {
					return stop{os.ErrNotExist}
				}
				return fmt.Errorf("transectutil: opening blob %s: %v", key, err)
			}
			defer r.Close()
			return copyToFile(local, r)
		})
		if err != nil {
			if i > 0 && os.IsNotExist(err) {
				continue
			}
			return "", err
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

// expandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise.
func expandShp(filename string) []string {
	o := []string{filename}
	if filepath.Ext(filename) != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}

type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the uploadOutput method is run.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil || path == "" {
		return path
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		u.dir, u.err = ioutil.TempDir("", "transect")
		if u.err != nil {
			return ""
		}
	}
	files := expandShp(path)
	for _, f := range files {
		u.files = append(u.files, [2]string{filepath.Join(u.dir, filepath.Base(f)), f})
	}
	return filepath.Join(u.dir, filepath.Base(files[0]))
}

// uploadOutput copies the locally-written files to blob storage.
// Local files that don't exist, such as a missing .prj file, are skipped.
func (u *uploader) uploadOutput(ctx context.Context, log logrus.FieldLogger) error {
	if u.err != nil {
		return fmt.Errorf("transectutil: preparing upload: %v", u.err)
	}
	for _, files := range u.files {
		if _, err := os.Stat(files[0]); os.IsNotExist(err) {
			continue
		}
		log.WithField("url", files[1]).Info("uploading")
		if err := uploadFile(ctx, files[0], files[1]); err != nil {
			return err
		}
	}
	return nil
}

func uploadFile(ctx context.Context, local, remote string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("transectutil: opening file '%s' for upload: %v", local, err)
	}
	defer r.Close()
	u, err := url.Parse(remote)
	if err != nil {
		return fmt.Errorf("transectutil: parsing url '%s' for upload: %v", remote, err)
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return fmt.Errorf("transectutil: opening bucket to upload file '%s': %v", remote, err)
	}
	w, err := bucket.NewWriter(ctx, strings.TrimPrefix(u.Path, "/"), &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("transectutil: opening writer to upload file '%s': %v", remote, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("transectutil: uploading file '%s' to '%s': %v", local, remote, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("transectutil: uploading file '%s' to '%s': %v", local, remote, err)
	}
	return nil
}
