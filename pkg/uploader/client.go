package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/utils"
)

const maxResponseBytes = 16 << 20

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Client posts audio files to the upload endpoint of a transcription server.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	endpoint   string
	fieldName  string
	userAgent  string
}

type responseEnvelope struct {
	AudioURL             string `json:"audio_url"`
	FormattedTranslation string `json:"formatted_translation"`
	Error                json.RawMessage `json:"error"`
}

func NewClient(opts ...model.ClientOption) (*Client, error) {
	cfg := model.ResolveClientOpts(opts...)

	rawURL := strings.TrimSpace(cfg.URL)
	if rawURL == "" {
		return nil, utils.WrapIfNotNil(errors.New("server URL is required"))
	}
	baseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, utils.WrapIfNotNil(err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, utils.WrapIfNotNil(fmt.Errorf("server URL %q must use http or https", rawURL))
	}
	if baseURL.Host == "" {
		return nil, utils.WrapIfNotNil(fmt.Errorf("server URL %q has no host", rawURL))
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	endpoint := strings.TrimSuffix(baseURL.String(), "/") + "/" + strings.TrimPrefix(strings.TrimSpace(cfg.UploadPath), "/")

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		endpoint:   endpoint,
		fieldName:  cfg.FieldName,
		userAgent:  cfg.UserAgent,
	}, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Upload sends file as the single part of a multipart POST. An "error" field
// in the response body is returned inside the result with a nil error; every
// other failure is returned as an error.
func (c *Client) Upload(ctx context.Context, file model.SelectedFile) (model.UploadResult, error) {
	start := time.Now()
	log := logging.NewLogger(ctx)

	content, err := file.Open()
	if err != nil {
		return model.UploadResult{}, utils.WrapIfNotNil(err, "opening "+file.Name)
	}
	defer func() {
		_ = content.Close()
	}()

	body, contentType, contentLength, err := c.multipartBody(file, content)
	if err != nil {
		return model.UploadResult{}, utils.WrapIfNotNil(err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return model.UploadResult{}, utils.WrapIfNotNil(err)
	}
	httpRequest.ContentLength = contentLength
	httpRequest.Header.Set("Content-Type", contentType)
	httpRequest.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpRequest.Header.Set("User-Agent", c.userAgent)
	}

	log.Infof("upload_request endpoint=%q file=%q type=%q bytes=%d", c.endpoint, file.Name, file.MediaType, file.Size)

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return model.UploadResult{}, utils.WrapIfNotNil(err)
	}
	defer httpResponse.Body.Close()

	responseBits, err := io.ReadAll(io.LimitReader(httpResponse.Body, maxResponseBytes))
	if err != nil {
		return model.UploadResult{}, utils.WrapIfNotNil(err)
	}

	log.Debugf("upload_response status=%d latency_ms=%d", httpResponse.StatusCode, time.Since(start).Milliseconds())

	return decodeResponse(httpResponse.StatusCode, responseBits)
}

// ResolveAudioURL turns the server's audio_url, usually a root-relative
// path, into an absolute URL for display. Unparseable input is returned as is.
func (c *Client) ResolveAudioURL(audioURL string) string {
	ref, err := url.Parse(strings.TrimSpace(audioURL))
	if err != nil || audioURL == "" {
		return audioURL
	}
	return c.baseURL.ResolveReference(ref).String()
}

// multipartBody frames content between the part header and the closing
// boundary so the request carries an exact Content-Length. Files of unknown
// size are buffered.
func (c *Client) multipartBody(file model.SelectedFile, content io.Reader) (io.Reader, string, int64, error) {
	var frame bytes.Buffer
	mw := multipart.NewWriter(&frame)

	if _, err := mw.CreatePart(c.partHeader(file)); err != nil {
		return nil, "", 0, err
	}
	headLen := frame.Len()
	if err := mw.Close(); err != nil {
		return nil, "", 0, err
	}
	head := append([]byte(nil), frame.Bytes()[:headLen]...)
	tail := append([]byte(nil), frame.Bytes()[headLen:]...)

	size := file.Size
	if size < 0 {
		buffered, err := io.ReadAll(content)
		if err != nil {
			return nil, "", 0, err
		}
		content = bytes.NewReader(buffered)
		size = int64(len(buffered))
	}

	body := io.MultiReader(bytes.NewReader(head), content, bytes.NewReader(tail))
	return body, mw.FormDataContentType(), int64(len(head)) + size + int64(len(tail)), nil
}

func (c *Client) partHeader(file model.SelectedFile) textproto.MIMEHeader {
	contentType := file.MediaType
	if contentType == "" {
		contentType = model.MediaTypeUnknown
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(c.fieldName), quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", contentType)
	return h
}

func decodeResponse(statusCode int, responseBits []byte) (model.UploadResult, error) {
	var envelope *responseEnvelope
	if err := json.Unmarshal(responseBits, &envelope); err != nil {
		return model.UploadResult{}, utils.WrapIfNotNil(fmt.Errorf("decoding response (status %d): %w", statusCode, err))
	}
	if envelope == nil {
		return model.UploadResult{}, utils.WrapIfNotNil(fmt.Errorf("empty JSON response (status %d)", statusCode))
	}

	if message, ok := errorMessage(envelope.Error); ok {
		return model.UploadResult{Error: message}, nil
	}
	if statusCode < 200 || statusCode >= 300 {
		return model.UploadResult{}, utils.WrapIfNotNil(fmt.Errorf("upload endpoint returned %d %s", statusCode, http.StatusText(statusCode)))
	}

	return model.UploadResult{
		AudioURL:             envelope.AudioURL,
		FormattedTranslation: envelope.FormattedTranslation,
	}, nil
}

// errorMessage reports whether the "error" field is set to a truthy value
// and how it reads as text. null, false, 0 and "" count as absent; strings
// are used verbatim, whitespace included; anything else is shown as JSON.
func errorMessage(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case bool:
		return "true", v
	case float64:
		if v == 0 {
			return "", false
		}
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return string(raw), true
		}
		return compact.String(), true
	}
}
