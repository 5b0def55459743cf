// Package archive copies conversations to S3 before they are deleted.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/wolfman30/sales-call-agent/internal/conversation"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

const recordVersion = "1.0"

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store archives conversation records to S3.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
	now      func() time.Time
}

// NewStore creates an archive Store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger, now: time.Now}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// ArchiveConversation converts a conversation to a scrubbed record and writes it.
func (s *Store) ArchiveConversation(ctx context.Context, detail *conversation.Detail) error {
	if !s.Enabled() || detail == nil {
		return nil
	}
	return s.Put(ctx, NewRecord(detail, s.now().UTC()))
}

// NewRecord builds the archived form of a conversation. Message text is
// scrubbed of emails and phone numbers.
func NewRecord(detail *conversation.Detail, archivedAt time.Time) *ConversationRecord {
	rec := &ConversationRecord{
		Version:         recordVersion,
		ConversationID:  detail.ID,
		OwnerHash:       HashID(detail.OwnerID),
		BusinessName:    detail.BusinessName,
		StartedAt:       detail.StartedAt,
		ArchivedAt:      archivedAt,
		DurationSeconds: detail.DurationSeconds,
		MessageCount:    len(detail.Messages),
		Messages:        make([]Message, 0, len(detail.Messages)),
	}
	if detail.AgentID != nil {
		rec.AgentID = *detail.AgentID
	}
	if detail.Summary != nil {
		rec.Summary = ScrubPII(*detail.Summary)
	}
	if detail.Sentiment != nil {
		rec.Sentiment = *detail.Sentiment
	}
	for _, m := range detail.Messages {
		rec.Messages = append(rec.Messages, Message{Role: string(m.Role), Content: m.Content, Timestamp: m.CreatedAt})
	}
	ScrubMessages(rec.Messages)
	return rec
}

// Put writes a ConversationRecord as JSON to S3 and appends to the manifest.
func (s *Store) Put(ctx context.Context, record *ConversationRecord) error {
	if !s.Enabled() {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("archive: marshal record: %w", err)
	}

	now := record.ArchivedAt
	if now.IsZero() {
		now = s.now().UTC()
	}

	s3Key := fmt.Sprintf("conversations/v1/by-date/%d/%02d/%02d/%s.json",
		now.Year(), now.Month(), now.Day(), record.ConversationID)

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s3Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put %s: %w", s3Key, err)
	}

	s.logger.Info("archived conversation to S3",
		"conversation_id", record.ConversationID,
		"s3_key", s3Key,
		"message_count", record.MessageCount,
	)

	entry := ManifestEntry{
		ConversationID: record.ConversationID,
		S3Key:          s3Key,
		Sentiment:      record.Sentiment,
		ArchivedAt:     now.Format(time.RFC3339),
		MessageCount:   record.MessageCount,
	}
	if err := s.AppendManifest(ctx, entry); err != nil {
		// The record itself is already stored.
		s.logger.Warn("failed to append manifest", "error", err, "conversation_id", record.ConversationID)
	}
	return nil
}

// AppendManifest appends a JSONL line to the monthly manifest file.
// Uses read-modify-write since S3 doesn't support append.
func (s *Store) AppendManifest(ctx context.Context, entry ManifestEntry) error {
	if !s.Enabled() {
		return nil
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("archive: marshal manifest entry: %w", err)
	}

	now := s.now().UTC()
	manifestKey := fmt.Sprintf("conversations/v1/manifests/%d-%02d.jsonl", now.Year(), now.Month())

	var existing []byte
	getResp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(manifestKey),
	})
	switch {
	case err == nil:
		existing, err = io.ReadAll(getResp.Body)
		getResp.Body.Close()
		if err != nil {
			return fmt.Errorf("archive: read manifest: %w", err)
		}
	case isNotFound(err):
		s.logger.Debug("manifest not found, creating new", "key", manifestKey)
	default:
		return fmt.Errorf("archive: get manifest: %w", err)
	}

	var buf bytes.Buffer
	if len(existing) > 0 {
		buf.Write(existing)
		if existing[len(existing)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	buf.Write(line)
	buf.WriteByte('\n')

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(manifestKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("archive: s3 put manifest: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *s3types.NotFound
	return errors.As(err, &nf)
}

var _ conversation.Archiver = (*Store)(nil)
