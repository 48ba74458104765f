package model

import "time"

// 注文コミットの結果
type AuditAction string

const (
	//コミット成功
	AuditActionOrderCommitted AuditAction = "ORDER_COMMITTED"
	//途中失敗で補償済み
	AuditActionOrderCompensated AuditAction = "ORDER_COMPENSATED"
	//補償そのものが失敗（注文が残っている）
	AuditActionCompensationFailed AuditAction = "ORDER_COMPENSATION_FAILED"
)

// 監査ログ
// コミット1回につき終端状態を1行残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//注文したユーザー
	ActorID int64 `gorm:"not null;index" json:"actor_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//補償済みの場合はもう存在しない注文ID
	OrderID int64 `gorm:"not null;index" json:"order_id"`

	//コミット試行ID（ログとの突き合わせ用）
	AttemptID string `gorm:"type:varchar(64);not null;index" json:"attempt_id"`

	//JSON文字列で保存する。
	DetailJSON string `gorm:"type:text" json:"detail_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
