package cloudinary

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.cloudinary.com"

// Client uploads and deletes images on Cloudinary using their REST API.
type Client struct {
	CloudName string
	APIKey    string
	APISecret string
	BaseURL   string
	HTTP      *http.Client
}

// New creates a Cloudinary client.
func New(cloudName, apiKey, apiSecret string) *Client {
	return &Client{
		CloudName: cloudName,
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   defaultBaseURL,
		HTTP:      &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadResult holds the response from Cloudinary after a successful upload.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Bytes     int    `json:"bytes"`
}

// UploadWithWatermark uploads raw image bytes with a top-right text overlay
// burned in by Cloudinary's incoming transformation.
func (c *Client) UploadWithWatermark(data []byte, filename, watermarkText string) (*UploadResult, error) {
	params := map[string]string{
		"timestamp":      strconv.FormatInt(time.Now().Unix(), 10),
		"api_key":        c.APIKey,
		"transformation": WatermarkTransformation(watermarkText),
	}
	params["signature"] = c.sign(params)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		_ = w.WriteField(k, v)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: create form file failed: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("cloudinary: write file failed: %w", err)
	}
	w.Close()

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.BaseURL, c.CloudName)
	req, err := http.NewRequest(http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("cloudinary: upload failed (%d): %s", resp.StatusCode, string(body))
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("cloudinary: decode response failed: %w", err)
	}
	return &result, nil
}

// Destroy requests deletion of an uploaded asset by public id.
func (c *Client) Destroy(publicID string) error {
	params := map[string]string{
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
		"api_key":   c.APIKey,
		"public_id": publicID,
	}
	params["signature"] = c.sign(params)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range params {
		_ = w.WriteField(k, v)
	}
	w.Close()

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/destroy", c.BaseURL, c.CloudName)
	req, err := http.NewRequest(http.MethodPost, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("cloudinary: create request failed: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("cloudinary: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("cloudinary: destroy failed (%d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// WatermarkTransformation builds the incoming transformation for a black,
// top-right, multi-line text overlay.
func WatermarkTransformation(text string) string {
	return "co_black,g_north_east,l_text:arial_18_bold:" + escapeOverlayText(text)
}

// escapeOverlayText encodes overlay text for embedding in a transformation
// component. Commas, slashes and newlines would otherwise break the URL
// grammar.
func escapeOverlayText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// PublicIDFromURL derives the asset's public id from a delivery URL: the last
// path segment with everything from the first dot dropped.
func PublicIDFromURL(secureURL string) string {
	seg := secureURL
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	if i := strings.Index(seg, "."); i >= 0 {
		seg = seg[:i]
	}
	return seg
}

// sign computes the Cloudinary API signature from the given params.
// api_key and file are excluded from the signature per Cloudinary spec.
func (c *Client) sign(params map[string]string) string {
	excludeKeys := map[string]bool{"api_key": true, "file": true, "resource_type": true}

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		if !excludeKeys[k] && v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)

	payload := strings.Join(pairs, "&") + c.APISecret
	h := sha1.New()
	h.Write([]byte(payload))
	return fmt.Sprintf("%x", h.Sum(nil))
}
