package artifact

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultHubURL     = "https://huggingface.co"
	DefaultRevision   = "main"
	DefaultRetryCount = 3

	defaultHubTimeout = 10 * time.Minute
	defaultRetryDelay = 500 * time.Millisecond
)

// HuggingFaceConfig locates one file inside a Hugging Face model repository.
type HuggingFaceConfig struct {
	BaseURL    string
	RepoID     string
	Revision   string
	Filename   string
	Token      string
	Timeout    time.Duration
	RetryCount int
}

// HuggingFace downloads artifacts through the hub's resolve endpoint.
type HuggingFace struct {
	client *resty.Client
	cfg    HuggingFaceConfig
}

// NewHuggingFace returns a hub source with retrying HTTP client.
func NewHuggingFace(cfg HuggingFaceConfig, logger *zap.Logger) (*HuggingFace, error) {
	if cfg.RepoID == "" {
		return nil, fmt.Errorf("huggingface: repo id is required")
	}
	if cfg.Filename == "" {
		return nil, fmt.Errorf("huggingface: filename is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHubURL
	}
	if cfg.Revision == "" {
		cfg.Revision = DefaultRevision
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHubTimeout
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := resty.New().
		SetLogger(logger.Named("huggingface").Sugar()).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(defaultRetryDelay).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.Token != "" {
		r.SetAuthToken(cfg.Token)
	}

	return &HuggingFace{client: r, cfg: cfg}, nil
}

func (h *HuggingFace) path() string {
	return fmt.Sprintf("/%s/resolve/%s/%s", h.cfg.RepoID, h.cfg.Revision, h.cfg.Filename)
}

// Download writes the artifact to dst.
func (h *HuggingFace) Download(ctx context.Context, dst string) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetOutput(dst).
		Get(h.path())
	if err != nil {
		return fmt.Errorf("couldn't connect with model hub: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s not found in %s@%s: the repository must host an ONNX export of the model",
			h.cfg.Filename, h.cfg.RepoID, h.cfg.Revision)
	}
	if resp.IsError() {
		return fmt.Errorf("model hub returned %s", resp.Status())
	}
	return nil
}

func (h *HuggingFace) String() string {
	return fmt.Sprintf("huggingface:%s@%s/%s", h.cfg.RepoID, h.cfg.Revision, h.cfg.Filename)
}
