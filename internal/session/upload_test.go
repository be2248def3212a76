package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ragchat/internal/domain"
	"ragchat/internal/events"
)

func TestUploadBeginRequiresFile(t *testing.T) {
	u := NewUpload(events.NewBus(), nil)

	_, err := u.Begin()
	assert.ErrorIs(t, err, ErrNoFile)
	assert.Equal(t, UploadIdle, u.Status())
}

func TestUploadSingleTransfer(t *testing.T) {
	u := NewUpload(events.NewBus(), nil)
	u.SelectFile(StagedFile{Path: "/tmp/a.pdf", Name: "a.pdf", Size: 1024})

	f, err := u.Begin()
	assert.NoError(t, err)
	assert.Equal(t, "a.pdf", f.Name)
	assert.Equal(t, Uploading, u.Status())

	_, err = u.Begin()
	assert.ErrorIs(t, err, ErrTransferInFlight)

	err = u.ClearFile()
	assert.ErrorIs(t, err, ErrTransferInFlight)
	assert.NotNil(t, u.File())
}

func TestUploadSucceedClearsFileAndSignalsOnce(t *testing.T) {
	bus := events.NewBus()
	fired := 0
	var got events.Event
	bus.Subscribe(events.UploadCompleted, func(ev events.Event) {
		fired++
		got = ev
	})

	u := NewUpload(bus, nil)
	u.SelectFile(StagedFile{Path: "/tmp/a.pdf", Name: "a.pdf"})
	_, err := u.Begin()
	assert.NoError(t, err)

	u.Succeed(&domain.UploadResult{Success: true, Filename: "a.pdf", Chunks: 12})

	assert.Equal(t, UploadSucceeded, u.Status())
	assert.Contains(t, u.Message(), "a.pdf")
	assert.Contains(t, u.Message(), "12")
	assert.Nil(t, u.File())
	assert.Equal(t, 1, fired)
	assert.Equal(t, "a.pdf", got.Payload["filename"])
	assert.Equal(t, 12, got.Payload["chunks"])
}

func TestUploadFailRetainsFile(t *testing.T) {
	bus := events.NewBus()
	fired := 0
	bus.Subscribe(events.UploadCompleted, func(events.Event) { fired++ })

	u := NewUpload(bus, nil)
	u.SelectFile(StagedFile{Path: "/tmp/a.pdf", Name: "a.pdf"})
	_, err := u.Begin()
	assert.NoError(t, err)

	u.Fail("Only PDF and TXT files are supported")

	assert.Equal(t, UploadFailed, u.Status())
	assert.Equal(t, "Only PDF and TXT files are supported", u.Message())
	// staged file kept so the user can retry without reselecting
	assert.NotNil(t, u.File())
	assert.Equal(t, 0, fired)

	// retry straight away
	_, err = u.Begin()
	assert.NoError(t, err)
	assert.Equal(t, Uploading, u.Status())
}

func TestUploadFailFallbackMessage(t *testing.T) {
	u := NewUpload(events.NewBus(), nil)
	u.SelectFile(StagedFile{Path: "/tmp/a.txt", Name: "a.txt"})
	_, _ = u.Begin()

	u.Fail("")
	assert.Equal(t, FallbackUploadError, u.Message())
}

func TestUploadSelectClearsTerminalStatus(t *testing.T) {
	u := NewUpload(events.NewBus(), nil)
	u.SelectFile(StagedFile{Path: "/tmp/a.pdf", Name: "a.pdf"})
	_, _ = u.Begin()
	u.Fail("boom")

	u.SelectFile(StagedFile{Path: "/tmp/b.txt", Name: "b.txt"})
	assert.Equal(t, UploadIdle, u.Status())
	assert.Empty(t, u.Message())
	assert.Equal(t, "b.txt", u.File().Name)
}

func TestUploadClearFileWhenIdle(t *testing.T) {
	u := NewUpload(events.NewBus(), nil)
	u.SelectFile(StagedFile{Path: "/tmp/a.pdf", Name: "a.pdf"})

	assert.NoError(t, u.ClearFile())
	assert.Nil(t, u.File())

	_, err := u.Begin()
	assert.ErrorIs(t, err, ErrNoFile)
}
