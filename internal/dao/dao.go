// Package dao 实现数据访问层
package dao

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/haierkeys/note-rpc-service/internal/model"
	"github.com/haierkeys/note-rpc-service/pkg/fileurl"
	"github.com/haierkeys/note-rpc-service/pkg/util"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型: sqlite, mysql, postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path sqlite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/notes.db"`
	// UserName 用户名
	UserName string `yaml:"username"`
	// Password 密码
	Password string `yaml:"password"`
	// Host 主机
	Host string `yaml:"host" default:"127.0.0.1"`
	// Port 端口，为 0 时使用数据库默认端口
	Port int `yaml:"port"`
	// Name 数据库名
	Name string `yaml:"name" default:"notes"`
	// TablePrefix 表名前缀
	TablePrefix string `yaml:"table-prefix"`
	// Charset mysql 字符集
	Charset string `yaml:"charset" default:"utf8mb4"`
	// MaxIdleConns 最大空闲连接数
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大存活时间，如 10m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"10m"`
	// Replicas 只读副本 DSN 列表（mysql / postgres）
	Replicas []string `yaml:"replicas"`
	// Debug 输出 SQL 日志
	Debug bool `yaml:"-"`
}

// NewDBEngine 创建数据库引擎并完成建表
func NewDBEngine(c DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: c.TablePrefix, // 表名前缀，`Note` 的表名应该是 `t_notes`
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if c.Debug {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	if len(c.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, dsn := range c.Replicas {
			r, err := replicaDialector(c.Type, dsn)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, r)
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, errors.Wrap(err, "register replicas")
		}
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SetMaxIdleConns 用于设置连接池中空闲连接的最大数量。
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)

	// SetMaxOpenConns 设置打开数据库连接的最大数量。
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)

	// SetConnMaxLifetime 设置了连接可复用的最大时间。
	if d, err := util.ParseDuration(c.ConnMaxLifetime); err == nil && d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}

	_ = db.Use(&gormTracing.OpentracingPlugin{})

	if err := model.AutoMigrate(db); err != nil {
		return nil, errors.Wrap(err, "migrate notes table")
	}

	return db, nil
}

// Close 关闭数据库连接
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(c.Type) {
	case "", "sqlite":
		if c.Path != ":memory:" && !strings.HasPrefix(c.Path, "file:") {
			if !fileurl.IsExist(filepath.Dir(c.Path)) {
				if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
					return nil, errors.Wrap(err, "create database directory")
				}
			}
		}
		return sqlite.Open(c.Path), nil
	case "mysql":
		port := c.Port
		if port == 0 {
			port = 3306
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=false&loc=UTC",
			c.UserName,
			c.Password,
			c.Host,
			port,
			c.Name,
			c.Charset,
		)), nil
	case "postgres", "postgresql":
		port := c.Port
		if port == 0 {
			port = 5432
		}
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
			port,
		)), nil
	}
	return nil, errors.Errorf("unsupported database type %q", c.Type)
}

func replicaDialector(typ, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(typ) {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	}
	return nil, errors.Errorf("read replicas are not supported for database type %q", typ)
}
