package usecase

import (
	"strconv"
	"strings"
)

// 受け取り可能時間 08:00〜16:00（16:00ちょうどは可、16:01は不可）
const (
	pickupOpenHour  = 8
	pickupCloseHour = 16
)

const msgInvalidPickupWindow = "Pickup time must be between 8:00 AM and 4:00 PM."

// "HH:MM" を検証する。形式不正も時間外として扱う
func validatePickupTime(s string) error {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return NewError(KindInvalidPickupWindow, msgInvalidPickupWindow)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return NewError(KindInvalidPickupWindow, msgInvalidPickupWindow)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return NewError(KindInvalidPickupWindow, msgInvalidPickupWindow)
	}

	if hours < pickupOpenHour || hours > pickupCloseHour || (hours == pickupCloseHour && minutes > 0) {
		return NewError(KindInvalidPickupWindow, msgInvalidPickupWindow)
	}
	return nil
}
