package telemetry

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

const report_resty_dump = "resty.dump"

// redactedFields are form fields whose values never end up in a dump.
var redactedFields = []string{"_password"}

// DumpOutput receives a rendered request/response pair for each request.
type DumpOutput interface {
	Write(id string, contents string)
}

// DirectoryOutput writes every message to its own file in a directory.
type DirectoryOutput struct {
	directory string
	counter   *uint64
	tel       API
}

var dumpFilePattern = regexp.MustCompile(`^\d{4}-.+\.txt$`)

// NewDirectoryOutput creates `dir` or clears the dumps of a previous run from
// it. A directory holding anything other than dump files is refused.
func NewDirectoryOutput(dir string, tel API) (DirectoryOutput, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return DirectoryOutput{}, err
	}
	for _, e := range entries {
		if e.IsDir() || !dumpFilePattern.MatchString(e.Name()) {
			return DirectoryOutput{}, fmt.Errorf(
				"dump directory %s contains %s which is not a dump file",
				dir, e.Name(),
			)
		}
	}
	for _, e := range entries {
		err = os.Remove(filepath.Join(dir, e.Name()))
		if err != nil {
			return DirectoryOutput{}, err
		}
	}

	err = os.MkdirAll(dir, 0700)
	if err != nil {
		return DirectoryOutput{}, err
	}
	return DirectoryOutput{directory: dir, counter: new(uint64), tel: tel}, nil
}

func (o DirectoryOutput) Write(id string, contents string) {
	n := atomic.AddUint64(o.counter, 1)
	name := fmt.Sprintf("%04d-%s.txt", n, id)
	err := os.WriteFile(filepath.Join(o.directory, name), []byte(contents), 0600)
	if err != nil {
		o.tel.ReportWarning(report_resty_dump, name, err)
	}
}

// DumpResty writes every response `client` receives, together with its
// request, to `output`.
func DumpResty(client *resty.Client, output DumpOutput) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := strings.ToLower(res.Request.Method)
		if res.RawResponse != nil && res.RawResponse.Request != nil {
			segment := filepath.Base(res.RawResponse.Request.URL.Path)
			if segment != "/" && segment != "." {
				id += "-" + segment
			}
		}
		output.Write(id, formatHttpMessage(res))
		return nil
	})
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out strings.Builder
	for _, k := range keys {
		for _, v := range headers[k] {
			out.WriteString(fmt.Sprintf("%s: %s\n", k, v))
		}
	}
	return strings.TrimSuffix(out.String(), "\n")
}

func redactForm(body string) string {
	form, err := url.ParseQuery(body)
	if err != nil {
		return body
	}
	redacted := false
	for _, field := range redactedFields {
		if form.Has(field) {
			form.Set(field, "REDACTED")
			redacted = true
		}
	}
	if !redacted {
		return body
	}
	return form.Encode()
}

func formatRequestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil || req.Body == nil || req.Body == http.NoBody {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	if body == nil {
		return ""
	}
	defer body.Close()
	readBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	if strings.HasPrefix(req.Header.Get("content-type"), "application/x-www-form-urlencoded") {
		return redactForm(string(readBody))
	}
	return string(readBody)
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: request body
// 5: response status
// 6: response url
// 7: response headers in ("Key: Value" format)
// 8: response body
const messageInfoTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s %s

%s

%s`

func formatHttpMessage(res *resty.Response) string {
	var requestHeaders string
	if res.Request.RawRequest != nil {
		requestHeaders = formatHeaders(res.Request.RawRequest.Header)
	}

	responseUrl := res.Request.URL
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		responseUrl = res.RawResponse.Request.URL.String()
	}

	return fmt.Sprintf(
		messageInfoTemplate,

		res.Request.Method, res.Request.URL,
		requestHeaders,
		formatRequestBody(res.Request.RawRequest),

		strconv.Itoa(res.StatusCode()), responseUrl,
		formatHeaders(res.Header()),
		res.String(),
	)
}
