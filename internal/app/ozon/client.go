// Package ozon contains the client for the Ozon seller API supply endpoints.
package ozon

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sellerops/ozon-supply-connector/internal/app/config"
	"github.com/sellerops/ozon-supply-connector/internal/app/domain"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source ./client.go -destination=./mocks/mock_client.go -package=mocks

// ClientServices is the seller-API surface the supply pipeline drives.
type ClientServices interface {
	// DraftCreate will submit a supply draft and return the operation id.
	DraftCreate(ctx context.Context, task *domain.Task, clusterIDs []int64) (string, error)
	// DraftCreateInfo will poll a draft operation for its draft id and warehouses.
	DraftCreateInfo(ctx context.Context, operationID string) (*DraftInfo, error)
	// TimeslotInfo will list available timeslots for a draft on a local day.
	TimeslotInfo(ctx context.Context, draftID string, warehouseIDs []int64, dateISO string, bundleID string) ([]Timeslot, error)
	// DraftTimeslotSet will pin a timeslot on the draft; 404 maps to ErrNotFound.
	DraftTimeslotSet(ctx context.Context, draftID string, dropOffWarehouseID int64, slot TimeslotRef) error
	// SupplyCreate will turn a calculated draft into a supply order operation.
	SupplyCreate(ctx context.Context, task *domain.Task) (string, error)
	// SupplyCreateStatus will poll the supply operation for the order id.
	SupplyCreateStatus(ctx context.Context, operationID string) (string, error)
	// CargoesCreate will register cargo places for a supply.
	CargoesCreate(ctx context.Context, task *domain.Task) (string, error)
	// CargoesCreateInfo will poll the cargo operation for cargo ids.
	CargoesCreateInfo(ctx context.Context, operationID string) ([]string, error)
	// LabelsCreate will request label generation for a supply.
	LabelsCreate(ctx context.Context, supplyID string, cargoIDs []string) (string, error)
	// LabelsStatus will poll label generation for the file guid.
	LabelsStatus(ctx context.Context, operationID string) (string, error)
	// LabelsFile will download the generated label PDF.
	LabelsFile(ctx context.Context, fileGUID string) ([]byte, error)
}

// ClientServicesImpl implementation of ClientServices.
type ClientServicesImpl struct {
	baseURL     string
	clientID    string
	apiKey      string
	hardTimeout time.Duration
	extraDays   int
	dropOffID   int64
	loc         *time.Location

	rlDefaultCooldown int
	rlMaxWait         int

	httpClient *http.Client
	quiet      *quietGate
	mock       bool
}

// NewClientServices builds the seller-API client. With empty credentials the
// client runs in mock mode: requests are logged and answered with a canned
// body, never sent.
func NewClientServices(cfg *config.Config) (*ClientServicesImpl, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	pool, err := caPool(cfg.CADir)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	transport.MaxIdleConns = 20
	transport.MaxIdleConnsPerHost = 10

	c := &ClientServicesImpl{
		baseURL:     strings.TrimRight(cfg.OzonBaseURL, "/"),
		clientID:    cfg.OzonClientID,
		apiKey:      cfg.OzonAPIKey,
		hardTimeout: time.Duration(cfg.OzonHTTPHardTimeoutSeconds) * time.Second,
		extraDays:   cfg.SupplyTimeslotSearchExtraDays,
		dropOffID:   cfg.DropID,
		loc:         loc,

		rlDefaultCooldown: cfg.RateLimitDefaultCooldown,
		rlMaxWait:         cfg.RateLimitMaxOn429,

		httpClient: &http.Client{
			Timeout:   time.Duration(cfg.APITimeoutSeconds) * time.Second,
			Transport: transport,
		},
		quiet: newQuietGate(cfg.CreateQuietBeforeSec, cfg.CreateQuietAfterSec),
		mock:  cfg.OzonClientID == "" || cfg.OzonAPIKey == "",
	}

	if c.mock {
		zap.L().Warn("seller api credentials missing, running in mock mode")
	}

	return c, nil
}

// caPool starts from the system pool and appends every PEM found in the CA
// directory. A missing directory is not an error.
func caPool(dir string) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if dir == "" {
		return pool, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return pool, nil
		}
		return nil, fmt.Errorf("read ca dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".pem") && !strings.HasSuffix(name, ".crt") {
			continue
		}
		pem, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read ca file %s: %w", name, err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			zap.L().Warn("no certificates parsed from CA file", zap.String("file", name))
		}
	}
	return pool, nil
}

func (c *ClientServicesImpl) headers(req *http.Request) {
	req.Header.Set("Client-Id", c.clientID)
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}

// post sends a JSON request and returns the raw body, status and headers.
// Rate limiting and transport failures are classified here; everything else
// is left to the typed operations.
func (c *ClientServicesImpl) post(ctx context.Context, op, path string, payload interface{}) ([]byte, int, http.Header, error) {
	if c.mock {
		zap.L().Info("MOCK request", zap.String("method", http.MethodPost), zap.String("path", path))
		return []byte(`{"mock": true}`), http.StatusOK, http.Header{}, nil
	}

	if isCreateEndpoint(path) {
		if err := c.quiet.enterBeforeCreate(ctx); err != nil {
			return nil, 0, nil, &ServerError{Err: err}
		}
	} else if err := c.quiet.wait(ctx); err != nil {
		return nil, 0, nil, &ServerError{Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("marshal %s payload: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.hardTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, nil, fmt.Errorf("build %s request: %w", op, err)
	}
	c.headers(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zap.L().Warn("seller api request failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
		return nil, 0, nil, &ServerError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, resp.Header, &ServerError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= 400 {
		preview := string(raw)
		if len(preview) > 300 {
			preview = preview[:300]
		}
		zap.L().Debug("seller api error response", zap.String("op", op), zap.Int("status", resp.StatusCode), zap.String("body", preview))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return raw, resp.StatusCode, resp.Header, c.rateLimit(resp.Header, raw)
	case resp.StatusCode == http.StatusNotFound:
		return raw, resp.StatusCode, resp.Header, ErrNotFound
	case resp.StatusCode >= 500:
		return raw, resp.StatusCode, resp.Header, &ServerError{Status: resp.StatusCode}
	case resp.StatusCode >= 400:
		return raw, resp.StatusCode, resp.Header, &APIError{Status: resp.StatusCode, Op: op, Body: string(raw)}
	}

	return raw, resp.StatusCode, resp.Header, nil
}

// rateLimit builds the 429 classification from Retry-After and the body.
func (c *ClientServicesImpl) rateLimit(h http.Header, body []byte) *RateLimitError {
	wait := c.rlDefaultCooldown
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			wait = n
		}
	}
	if wait < 1 {
		wait = 1
	}
	if wait > c.rlMaxWait {
		wait = c.rlMaxWait
	}
	msg := strings.ToLower(string(body))
	perSecond := strings.Contains(msg, "per second") || strings.Contains(msg, "per-second")
	return &RateLimitError{Wait: wait, PerSecond: perSecond}
}

// getFile downloads a binary payload (label PDFs).
func (c *ClientServicesImpl) getFile(ctx context.Context, path string) ([]byte, error) {
	if c.mock {
		zap.L().Info("MOCK request", zap.String("method", http.MethodGet), zap.String("path", path))
		return []byte("%PDF-1.4\n% mock\n"), nil
	}

	if err := c.quiet.wait(ctx); err != nil {
		return nil, &ServerError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.hardTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build file request: %w", err)
	}
	c.headers(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ServerError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			return nil, &ServerError{Status: resp.StatusCode}
		}
		return nil, &APIError{Status: resp.StatusCode, Op: "labels file", Body: string(raw)}
	}

	return io.ReadAll(resp.Body)
}

// isCreateEndpoint marks the endpoints the quiet corridor protects.
func isCreateEndpoint(path string) bool {
	p := strings.ToLower(path)
	return strings.HasPrefix(p, "/v1/draft/create") || strings.HasPrefix(p, "/v1/draft/supply/create")
}

// idValue renders a stored string id the way the API expects: numeric ids as
// JSON numbers, everything else as strings.
func idValue(s string) interface{} {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
