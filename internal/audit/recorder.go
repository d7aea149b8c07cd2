// Package audit writes best-effort audit trail rows inside caller
// transactions.
package audit

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/railzwaylabs/tably/internal/audit/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Recorder struct {
	log   *zap.Logger
	genID *snowflake.Node
}

func NewRecorder(log *zap.Logger, genID *snowflake.Node) *Recorder {
	return &Recorder{
		log:   log.Named("audit.recorder"),
		genID: genID,
	}
}

type Entry struct {
	HotelID    snowflake.ID
	ActorType  auditdomain.ActorType
	ActorID    *string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

// Record inserts an audit row on the given transaction. Failures are logged
// and swallowed: the audit trail is not essential to correctness and its
// table may be absent on older deployments. The insert runs under a
// savepoint so a failed audit write cannot poison the caller's transaction.
func (r *Recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) {
	row := auditdomain.AuditLog{
		ID:         r.genID.Generate(),
		HotelID:    entry.HotelID,
		ActorType:  string(entry.ActorType),
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		TargetID:   entry.TargetID,
		Metadata:   datatypes.JSONMap(entry.Metadata),
	}

	if err := tx.SavePoint("audit_entry").Error; err != nil {
		r.log.Warn("audit write degraded", zap.String("action", entry.Action), zap.Error(err))
		return
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		tx.RollbackTo("audit_entry")
		r.log.Warn("audit write degraded",
			zap.String("action", entry.Action),
			zap.String("target_id", entry.TargetID),
			zap.Error(err),
		)
	}
}
