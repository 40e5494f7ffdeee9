package audit

import (
	"encoding/json"

	"eoq-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Recorder persists audit rows for administrative mutations. A failed
// audit write never fails the business operation; it is logged and
// dropped.
type Recorder struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewRecorder(db *gorm.DB, log *logrus.Logger) *Recorder {
	return &Recorder{db: db, log: log}
}

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string // "item", "stock_transaction", "user"
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      interface{}
	After       interface{}
}

func (r *Recorder) Write(opts LogOptions) {
	entry := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  marshalSnapshot(opts.Before),
		AfterData:   marshalSnapshot(opts.After),
	}

	if err := r.db.Create(&entry).Error; err != nil {
		r.log.WithFields(logrus.Fields{
			"entity_type": opts.EntityType,
			"entity_id":   opts.EntityID,
			"action":      opts.Action,
		}).WithError(err).Error("audit log write failed")
	}
}

func marshalSnapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
