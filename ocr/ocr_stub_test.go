//go:build !ocr

package ocr

import (
	"errors"
	"testing"

	"github.com/soft98-top/pdf-watermark-remover/engine"
)

func TestNewReturnsError(t *testing.T) {
	client, err := New()
	if err == nil {
		t.Error("Expected error from New() when OCR is disabled")
	}
	if !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("Expected ErrOCRNotEnabled, got: %v", err)
	}
	if client != nil {
		t.Error("Expected nil client when OCR is disabled")
	}
}

func TestCloseOnNilClient(t *testing.T) {
	var client *Client
	err := client.Close()
	if err != nil {
		t.Errorf("Close on nil client should not error: %v", err)
	}
}

func TestStubOperationsReturnErrOCRNotEnabled(t *testing.T) {
	client := &Client{}

	if _, err := client.RecognizeImage(nil); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizeImage: expected ErrOCRNotEnabled, got %v", err)
	}
	if _, err := client.RecognizePixmap(engine.NewPixmap(1, 1)); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizePixmap: expected ErrOCRNotEnabled, got %v", err)
	}
	if _, err := client.RecognizeRegion(engine.NewPixmap(4, 4), 0, 0, 2, 2); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("RecognizeRegion: expected ErrOCRNotEnabled, got %v", err)
	}
	if err := client.SetLanguage("eng"); !errors.Is(err, ErrOCRNotEnabled) {
		t.Errorf("SetLanguage: expected ErrOCRNotEnabled, got %v", err)
	}
}
