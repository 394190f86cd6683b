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
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"github.com/kr/pretty"
	"github.com/spatialmodel/transect"
)

func TestExpandShp(t *testing.T) {
	have := expandShp("gs://bucket/dir/file.shp")
	want := []string{"gs://bucket/dir/file.shp", "gs://bucket/dir/file.dbf", "gs://bucket/dir/file.shx", "gs://bucket/dir/file.prj"}
	if diff := pretty.Diff(have, want); len(diff) != 0 {
		t.Error(diff)
	}
	if have := expandShp("dem.ncf"); len(have) != 1 || have[0] != "dem.ncf" {
		t.Errorf("have %v", have)
	}
}

func TestIsBlob(t *testing.T) {
	for path, want := range map[string]bool{
		"gs://bucket/x.shp": true,
		"s3://bucket/x.shp": true,
		"file://bucket/x":   true,
		"http://host/x.shp": false,
		"/local/file.shp":   false,
		"relative/file.shp": false,
	} {
		if IsBlob(path) != want {
			t.Errorf("%s: should be %v", path, want)
		}
	}
}

func TestMaybeDownloadLocal(t *testing.T) {
	for _, path := range []string{"/dev/null", "/blah/test/", ""} {
		if k, err := maybeDownload(context.Background(), path, testLogger()); err != nil || k != path {
			t.Errorf("expected %s, got %s (%v)", path, k, err)
		}
	}
}

func TestMaybeDownloadRemote(t *testing.T) {
	dir, err := ioutil.TempDir("", "transectutil_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	tr := []transect.Transect{{ID: 1, Origin: geom.Point{X: 0, Y: 0}, Destination: geom.Point{X: 1, Y: 1}, Length: 1.4}}
	if err := transect.WriteTransects(filepath.Join(dir, "remote.shp"), tr, ""); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()
	k, err := maybeDownload(context.Background(), srv.URL+"/remote.shp", testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(k, "remote.shp") || strings.HasPrefix(k, "http") {
		t.Errorf("expected tempDir/remote.shp, got %s", k)
	}
	defer os.RemoveAll(filepath.Dir(k))
	for _, ext := range []string{".shp", ".dbf", ".shx"} {
		if _, err := os.Stat(strings.TrimSuffix(k, ".shp") + ext); err != nil {
			t.Errorf("%s file not downloaded: %v", ext, err)
		}
	}

	if _, err := maybeDownload(context.Background(), srv.URL+"/missing.shp", testLogger()); err == nil {
		t.Error("a missing remote file should cause an error")
	}
}

func TestMaybeUpload(t *testing.T) {
	u := new(uploader)
	if p := u.maybeUpload("local.shp"); p != "local.shp" {
		t.Errorf("local path changed to %s", p)
	}
	if p := u.maybeUpload(""); p != "" {
		t.Errorf("empty path changed to %s", p)
	}
	p := u.maybeUpload("gs://bucket/out/transects.shp")
	if u.err != nil {
		t.Fatal(u.err)
	}
	defer os.RemoveAll(u.dir)
	if p != filepath.Join(u.dir, "transects.shp") {
		t.Errorf("have local path %s", p)
	}
	if len(u.files) != 4 {
		t.Fatalf("have %d files to upload, want 4", len(u.files))
	}
	if u.files[1] != [2]string{filepath.Join(u.dir, "transects.dbf"), "gs://bucket/out/transects.dbf"} {
		t.Errorf("have %v", u.files[1])
	}
	// Nothing was written locally, so there is nothing to upload.
	if err := u.uploadOutput(context.Background(), testLogger()); err != nil {
		t.Error(err)
	}
}
