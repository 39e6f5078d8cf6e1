package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/popov-vn/ai-agent/internal/database"
	"github.com/popov-vn/ai-agent/internal/pipeline"
)

const (
	// MaxPhotoBytes is the largest photo downloaded for profiling.
	MaxPhotoBytes = 10 << 20

	photoDownloadTimeout = 30 * time.Second
	dbSaveTimeout        = 5 * time.Second
)

// messageText returns the text of a message, or its caption for media.
func messageText(msg *models.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

// commandArgs returns what follows the command word, e.g. "/price@gift_bot часы" gives "часы".
func commandArgs(text string) string {
	_, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(args)
}

// largestPhoto picks the biggest size that is within MaxPhotoBytes. Telegram
// lists sizes smallest first.
func largestPhoto(sizes []models.PhotoSize) (models.PhotoSize, bool) {
	for i := len(sizes) - 1; i >= 0; i-- {
		if sizes[i].FileSize <= MaxPhotoBytes {
			return sizes[i], true
		}
	}
	return models.PhotoSize{}, false
}

// downloadFile fetches a Telegram file and sniffs its MIME type.
func downloadFile(ctx context.Context, b *bot.Bot, fileID string) (data []byte, mimeType string, err error) {
	if fileID == "" {
		return nil, "", fmt.Errorf("empty file id")
	}

	ctx, cancel := context.WithTimeout(ctx, photoDownloadTimeout)
	defer cancel()

	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file: %w", err)
	}
	if file.FilePath == "" {
		return nil, "", fmt.Errorf("empty file path returned from Telegram")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, MaxPhotoBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("received empty file data")
	}
	if len(data) > MaxPhotoBytes {
		return nil, "", fmt.Errorf("file exceeds %d bytes", MaxPhotoBytes)
	}

	return data, http.DetectContentType(data), nil
}

// reply sends text to chatID, logging failures.
func reply(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

// historyRecord converts a finished run into a history row.
func historyRecord(chatID, userID int64, res pipeline.Result) (*database.Recommendation, error) {
	rec := &database.Recommendation{
		ID:         res.RunID,
		ChatID:     chatID,
		UserID:     userID,
		PersonInfo: res.PersonInfo,
		Stage:      string(res.Stage),
		DurationMS: res.Duration.Milliseconds(),
	}

	gifts := make([]database.GiftSummary, len(res.Top))
	for i, g := range res.Top {
		gifts[i] = database.GiftSummary{
			Rank:      g.Rank,
			Name:      g.Gift.Name,
			Cost:      g.Gift.Cost,
			Query:     g.Gift.Query,
			MeanScore: g.MeanScore,
			Votes:     g.Votes,
		}
	}
	if err := rec.SetGifts(gifts); err != nil {
		return nil, err
	}

	return rec, nil
}
