package usecase

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// 時刻（テストで固定する）
type Clock interface {
	Now() time.Time
}

// コミット試行ID
type IDGenerator interface {
	NewID() string
}

// 確認コードのバイト数（hexで8文字）
const confirmationCodeBytes = 4

// randomから4バイト読んでhexにする
func newConfirmationCode(random io.Reader) (string, error) {
	b := make([]byte, confirmationCodeBytes)
	if _, err := io.ReadFull(random, b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
