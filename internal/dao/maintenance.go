package dao

import (
	"context"
	"strings"

	"github.com/haierkeys/note-rpc-service/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Optimize 刷新查询规划器使用的统计信息
// sqlite 执行 PRAGMA optimize，mysql / postgres 对笔记表执行 ANALYZE
func Optimize(ctx context.Context, db *gorm.DB, dbType string) error {
	db = db.WithContext(ctx)

	switch strings.ToLower(dbType) {
	case "", "sqlite":
		return errors.Wrap(db.Exec("PRAGMA optimize").Error, "sqlite optimize")
	case "mysql":
		table, err := noteTable(db)
		if err != nil {
			return err
		}
		return errors.Wrap(db.Exec("ANALYZE TABLE ?", clause.Table{Name: table}).Error, "mysql analyze")
	case "postgres":
		table, err := noteTable(db)
		if err != nil {
			return err
		}
		return errors.Wrap(db.Exec("ANALYZE ?", clause.Table{Name: table}).Error, "postgres analyze")
	default:
		return errors.Errorf("unsupported database type %q", dbType)
	}
}

// noteTable 返回带前缀的笔记表名
func noteTable(db *gorm.DB) (string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&model.Note{}); err != nil {
		return "", errors.Wrap(err, "parse note model")
	}
	return stmt.Schema.Table, nil
}
