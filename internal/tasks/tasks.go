package tasks

import "encoding/json"

// 定义任务类型常量
const (
	TypeCatalogReconcile = "catalog:reconcile" // 目录可借数对账任务
)

// CatalogReconcilePayload 定义对账任务的数据结构。
// BookID 为 0 时对全部图书进行对账。
type CatalogReconcilePayload struct {
	BookID uint `json:"book_id"`
}

// NewCatalogReconcileTask 创建对账任务的 payload。
func NewCatalogReconcileTask(bookID uint) ([]byte, error) {
	payload := CatalogReconcilePayload{BookID: bookID}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return payloadBytes, nil
}
