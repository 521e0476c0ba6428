package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gradepilot/evaluator-api/internal/models"
	"github.com/gradepilot/evaluator-api/internal/utils"
)

const ocrSpaceEndpoint = "https://api.ocr.space/parse/image"

// OCRSpace uploads raw image bytes as a multipart form to the OCR.space
// parse API. Text extraction only.
type OCRSpace struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   *utils.Logger
}

type ocrSpaceResponse struct {
	ParsedResults []struct {
		ParsedText   string `json:"ParsedText"`
		ErrorMessage string `json:"ErrorMessage"`
	} `json:"ParsedResults"`
	OCRExitCode           int  `json:"OCRExitCode"`
	IsErroredOnProcessing bool `json:"IsErroredOnProcessing"`
	ErrorMessage          any  `json:"ErrorMessage"`
}

func NewOCRSpace(apiKey string, client *http.Client, logger *utils.Logger) *OCRSpace {
	return &OCRSpace{
		apiKey:   apiKey,
		endpoint: ocrSpaceEndpoint,
		client:   client,
		logger:   logger,
	}
}

func (o *OCRSpace) Extract(ctx context.Context, img Image, cfg models.ProviderConfig) models.ExtractionOutcome {
	ctx, cancel := context.WithTimeout(ctx, cfg.Options.Timeout(defaultExtractTimeout))
	defer cancel()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileNameFor(img))
	if err != nil {
		return failedOutcome(img.Index, "ocrspace", models.ErrorKindBadRequest)
	}
	if _, err := part.Write(img.Data); err != nil {
		return failedOutcome(img.Index, "ocrspace", models.ErrorKindBadRequest)
	}

	engine := cfg.Options.OCREngine
	if engine == 0 {
		engine = 2
	}
	writer.WriteField("language", "eng")
	writer.WriteField("isOverlayRequired", "false")
	writer.WriteField("detectOrientation", strconv.FormatBool(cfg.Options.DetectOrientation))
	writer.WriteField("scale", strconv.FormatBool(cfg.Options.Scale))
	writer.WriteField("isTable", strconv.FormatBool(cfg.Options.IsTable))
	writer.WriteField("OCREngine", strconv.Itoa(engine))

	if err := writer.Close(); err != nil {
		return failedOutcome(img.Index, "ocrspace", models.ErrorKindBadRequest)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, body)
	if err != nil {
		return failedOutcome(img.Index, "ocrspace", models.ErrorKindBadRequest)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("apikey", o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		o.logger.Warn("ocrspace request failed", "index", img.Index, "error", err)
		kind := classifyErr(err)
		if kind == models.ErrorKindProviderError {
			kind = models.ErrorKindFetchFailed
		}
		return failedOutcome(img.Index, "ocrspace", kind)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return failedOutcome(img.Index, "ocrspace", models.ErrorKindFetchFailed)
	}

	if resp.StatusCode != http.StatusOK {
		o.logger.Warn("ocrspace API error", "index", img.Index, "status", resp.StatusCode, "body", string(raw))
		return failedOutcome(img.Index, "ocrspace", classifyStatus(resp.StatusCode))
	}

	var parsed ocrSpaceResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return failedOutcome(img.Index, "ocrspace", models.ErrorKindProviderError)
	}

	if parsed.IsErroredOnProcessing || parsed.OCRExitCode > 2 {
		o.logger.Warn("ocrspace processing error", "index", img.Index, "exit_code", parsed.OCRExitCode, "message", fmt.Sprint(parsed.ErrorMessage))
		return failedOutcome(img.Index, "ocrspace", models.ErrorKindProviderError)
	}

	var sb strings.Builder
	for _, result := range parsed.ParsedResults {
		sb.WriteString(result.ParsedText)
	}
	return textOutcome(img.Index, "ocrspace", strings.TrimSpace(sb.String()))
}

func fileNameFor(img Image) string {
	ext := ".png"
	switch strings.ToLower(img.ContentType) {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	case "application/pdf":
		ext = ".pdf"
	}
	return fmt.Sprintf("answer-%d%s", img.Index+1, ext)
}
