package fetcher

import (
	"io"
	"mime"
	"net/http"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// BodyReader wraps a response body in a decoder for the charset declared in
// the Content-Type header. Bodies without a charset (or already UTF-8) are
// passed through unchanged. The HTML parser downstream expects UTF-8.
func BodyReader(resp *http.Response) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return resp.Body, nil
	}
	charset, ok := params["charset"]
	if !ok || charset == "" || charset == "utf-8" || charset == "UTF-8" {
		return resp.Body, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: unsupported charset %q", charset)
	}
	return enc.NewDecoder().Reader(resp.Body), nil
}
