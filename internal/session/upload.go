package session

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ragchat/internal/domain"
	"ragchat/internal/events"
)

// FallbackUploadError is shown when a failed upload carried no backend
// explanation.
const FallbackUploadError = "Error uploading document. Please ensure the backend is running."

var (
	// ErrNoFile rejects a submission with nothing staged.
	ErrNoFile = errors.New("no file selected")
	// ErrTransferInFlight rejects an action while an upload is running.
	ErrTransferInFlight = errors.New("an upload is already in flight")
)

// UploadStatus is the state of the upload session.
type UploadStatus int

const (
	UploadIdle UploadStatus = iota
	Uploading
	UploadSucceeded
	UploadFailed
)

// StagedFile is the single file staged for upload.
type StagedFile struct {
	Path string
	Name string
	Size int64
}

// Upload is a single-file staging area with one active transfer and a
// terminal status. A successful transfer publishes events.UploadCompleted
// after local state has settled. On failure the staged file is retained so
// the user can retry without reselecting; it is cleared only on success.
type Upload struct {
	file    *StagedFile
	status  UploadStatus
	message string
	bus     *events.Bus
	log     *zap.Logger
}

func NewUpload(bus *events.Bus, log *zap.Logger) *Upload {
	if log == nil {
		log = zap.NewNop()
	}
	return &Upload{bus: bus, log: log}
}

// SelectFile stages a file, clearing any terminal status.
func (u *Upload) SelectFile(f StagedFile) {
	u.file = &f
	u.status = UploadIdle
	u.message = ""
}

// ClearFile unstages the file. Rejected while a transfer is in flight.
func (u *Upload) ClearFile() error {
	if u.status == Uploading {
		return ErrTransferInFlight
	}
	u.file = nil
	return nil
}

// Begin starts the transfer for the staged file. The caller performs the
// Gateway upload and feeds the outcome back through Succeed or Fail.
func (u *Upload) Begin() (StagedFile, error) {
	if u.status == Uploading {
		return StagedFile{}, ErrTransferInFlight
	}
	if u.file == nil {
		return StagedFile{}, ErrNoFile
	}
	u.status = Uploading
	u.message = ""
	return *u.file, nil
}

// Succeed records a successful transfer, clears the staged file, and fires
// the upload-completed signal exactly once.
func (u *Upload) Succeed(res *domain.UploadResult) {
	u.status = UploadSucceeded
	u.message = fmt.Sprintf("Successfully uploaded %s! Indexed %d chunks.", res.Filename, res.Chunks)
	u.file = nil
	u.log.Info("upload succeeded",
		zap.String("filename", res.Filename),
		zap.Int("chunks", res.Chunks),
	)
	if u.bus != nil {
		u.bus.Publish(events.Event{
			Type: events.UploadCompleted,
			Payload: map[string]any{
				"filename": res.Filename,
				"chunks":   res.Chunks,
			},
			OccurredAt: time.Now(),
		})
	}
}

// Fail records a failed transfer with the backend's explanation when there
// is one. The staged file stays put for a retry.
func (u *Upload) Fail(message string) {
	if message == "" {
		message = FallbackUploadError
	}
	u.status = UploadFailed
	u.message = message
	u.log.Warn("upload failed", zap.String("message", message))
}

func (u *Upload) Status() UploadStatus { return u.status }

// File returns the staged file, or nil when nothing is staged.
func (u *Upload) File() *StagedFile { return u.file }

func (u *Upload) Message() string { return u.message }
