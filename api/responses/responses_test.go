package responses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccessStatus(w, http.StatusCreated, map[string]string{"hello": "world"})

	if got := w.Code; got != http.StatusCreated {
		t.Fatalf("expected status 201 but got %d", got)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var body types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode success envelope: %v", err)
	}
	if body.Data.(map[string]any)["hello"] != "world" {
		t.Fatalf("unexpected payload %v", body.Data)
	}
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()
	WriteMessage(w, "Category deleted")

	var body struct {
		Data types.MessageResponse `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != http.StatusOK || body.Data.Message != "Category deleted" {
		t.Fatalf("unexpected response %d %+v", w.Code, body)
	}
}

func TestWriteErrorMapsTypedError(t *testing.T) {
	w := httptest.NewRecorder()
	err := pkgerrors.NotFound(pkgerrors.EntitySubCategory, "Subcategory not found")
	WriteError(context.Background(), nil, w, err)

	if got := w.Code; got != http.StatusNotFound {
		t.Fatalf("expected status 404 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeNotFound) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if body.Error.Message != "Subcategory not found" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	details, ok := body.Error.Details.(map[string]any)
	if !ok || details["entity"] != "subcategory" {
		t.Fatalf("expected entity details, got %v", body.Error.Details)
	}
}

func TestWriteErrorUsesDomainMessages(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{pkgerrors.New(pkgerrors.CodeDuplicateName, "Category name must be unique"), http.StatusBadRequest, "Category name must be unique"},
		{pkgerrors.New(pkgerrors.CodeInvalidVariants, "At least one variant is required"), http.StatusBadRequest, "At least one variant is required"},
		{pkgerrors.New(pkgerrors.CodeAlreadyExists, "Product already in wishlist"), http.StatusBadRequest, "Product already in wishlist"},
		{pkgerrors.New(pkgerrors.CodeRateLimit, "slow down"), http.StatusTooManyRequests, "slow down"},
		{pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("dial tcp"), "redis down"), http.StatusServiceUnavailable, "dependency unavailable"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(context.Background(), nil, w, tc.err)

		var body types.ErrorEnvelope
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if w.Code != tc.status || body.Error.Message != tc.msg {
			t.Fatalf("%v: got %d %q", tc.err, w.Code, body.Error.Message)
		}
	}
}

func TestWriteErrorDefaultsToInternalForUntrustedErrors(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(context.Background(), nil, w, errors.New("pq: connection refused"))

	if got := w.Code; got != http.StatusInternalServerError {
		t.Fatalf("expected status 500 but got %d", got)
	}

	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeInternal) {
		t.Fatalf("unexpected code %s", body.Error.Code)
	}
	if strings.Contains(body.Error.Message, "connection refused") {
		t.Fatalf("internal cause leaked: %q", body.Error.Message)
	}
	if body.Error.Details != nil {
		t.Fatalf("details should be omitted for internal errors")
	}
}

func TestWriteErrorLogsChain(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: &buf})

	w := httptest.NewRecorder()
	WriteError(context.Background(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, errors.New("disk full"), "insert product"))

	out := buf.String()
	if !strings.Contains(out, "request.error") || !strings.Contains(out, "disk full") {
		t.Fatalf("expected error log with chain, got %s", out)
	}
}
