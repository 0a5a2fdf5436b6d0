package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/moore/internal/server"
	"github.com/cucumber/godog"
)

// HTTPTestServerWrapper wraps httptest.Server for integration tests.
type HTTPTestServerWrapper struct {
	Server     *httptest.Server
	TestServer *server.Server
}

// RegisterServerSteps registers steps that exercise the HTTP API in-process.
func (testCtx *TestContext) RegisterServerSteps(sc *godog.ScenarioContext) {
	sc.Step(`^the trace server is running$`, testCtx.theTraceServerIsRunning)
	sc.Step(`^the trace server is running with a limit of (\d+) requests? per minute$`,
		testCtx.theTraceServerIsRunningWithRateLimit)
	sc.Step(`^I send a GET request to "([^"]*)"$`, testCtx.iSendAGETRequestTo)
	sc.Step(`^I post the JSON to "([^"]*)":$`, testCtx.iPostTheJSONTo)
	sc.Step(`^I upload "([^"]*)" to "([^"]*)"$`, testCtx.iUploadTo)
	sc.Step(`^the response status should be (\d+)$`, testCtx.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "([^"]*)"$`, testCtx.theResponseShouldContain)
	sc.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseHeaderShouldBe)
	sc.Step(`^the response JSON field "([^"]*)" should be "([^"]*)"$`, testCtx.theResponseJSONFieldShouldBe)
}

func (testCtx *TestContext) theTraceServerIsRunning() error {
	return testCtx.startTestHTTPServer(server.Config{OverlayEnabled: true})
}

func (testCtx *TestContext) theTraceServerIsRunningWithRateLimit(perMinute int) error {
	return testCtx.startTestHTTPServer(server.Config{
		OverlayEnabled: true,
		RateLimit:      server.RateLimitConfig{Enabled: true, RequestsPerMinute: perMinute},
	})
}

func (testCtx *TestContext) startTestHTTPServer(cfg server.Config) error {
	if testCtx.HTTPTestServer != nil {
		return nil
	}
	cfg.MaxUploadMB = 5
	cfg.TimeoutSec = 10

	s, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	mux := http.NewServeMux()
	s.SetupRoutes(mux)

	testCtx.HTTPTestServer = &HTTPTestServerWrapper{Server: httptest.NewServer(mux), TestServer: s}
	return nil
}

// StopServer stops the in-process test server if one is running.
func (testCtx *TestContext) StopServer() error {
	if testCtx.HTTPTestServer == nil {
		return nil
	}
	testCtx.HTTPTestServer.Server.Close()
	err := testCtx.HTTPTestServer.TestServer.Close()
	testCtx.HTTPTestServer = nil
	return err
}

func (testCtx *TestContext) serverURL(path string) (string, error) {
	if testCtx.HTTPTestServer == nil {
		return "", fmt.Errorf("trace server is not running")
	}
	return testCtx.HTTPTestServer.Server.URL + path, nil
}

func (testCtx *TestContext) iSendAGETRequestTo(path string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	resp, err := http.Get(url) //nolint:gosec,noctx // test server URL
	if err != nil {
		return err
	}
	return testCtx.storeResponse(resp)
}

func (testCtx *TestContext) iPostTheJSONTo(path string, body *godog.DocString) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", strings.NewReader(body.Content)) //nolint:gosec,noctx // test server URL
	if err != nil {
		return err
	}
	return testCtx.storeResponse(resp)
}

func (testCtx *TestContext) iUploadTo(name, path string) error {
	url, err := testCtx.serverURL(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(testCtx.TempPath(name))
	if err != nil {
		return fmt.Errorf("failed to read upload %s: %w", name, err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filepath.Base(name))
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	resp, err := http.Post(url, mw.FormDataContentType(), &body) //nolint:gosec,noctx // test server URL
	if err != nil {
		return err
	}
	return testCtx.storeResponse(resp)
}

func (testCtx *TestContext) storeResponse(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	testCtx.LastHTTPStatusCode = resp.StatusCode
	testCtx.LastHTTPResponse = string(data)
	testCtx.LastHTTPHeaders = map[string]string{}
	for k := range resp.Header {
		testCtx.LastHTTPHeaders[k] = resp.Header.Get(k)
	}
	return nil
}

func (testCtx *TestContext) theResponseStatusShouldBe(code int) error {
	if testCtx.LastHTTPStatusCode != code {
		return fmt.Errorf("response status is %d, want %d\nBody: %s",
			testCtx.LastHTTPStatusCode, code, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseShouldContain(text string) error {
	if !strings.Contains(testCtx.LastHTTPResponse, text) {
		return fmt.Errorf("response does not contain '%s'\nBody: %s", text, testCtx.LastHTTPResponse)
	}
	return nil
}

func (testCtx *TestContext) theResponseHeaderShouldBe(name, value string) error {
	got := testCtx.LastHTTPHeaders[http.CanonicalHeaderKey(name)]
	if got != value {
		return fmt.Errorf("header %s is %q, want %q", name, got, value)
	}
	return nil
}

// theResponseJSONFieldShouldBe compares a dotted field of the JSON response
// body, formatted with %v, against want.
func (testCtx *TestContext) theResponseJSONFieldShouldBe(field, want string) error {
	var v any
	if err := json.Unmarshal([]byte(testCtx.LastHTTPResponse), &v); err != nil {
		return fmt.Errorf("response is not valid JSON: %w\nBody: %s", err, testCtx.LastHTTPResponse)
	}
	for _, part := range strings.Split(field, ".") {
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot navigate into non-object at '%s'", part)
		}
		if v, ok = obj[part]; !ok {
			return fmt.Errorf("field '%s' not found in response", field)
		}
	}
	if got := fmt.Sprintf("%v", v); got != want {
		return fmt.Errorf("response field %s is %s, want %s", field, got, want)
	}
	return nil
}
