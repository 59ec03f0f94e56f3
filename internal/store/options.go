package store

import (
	"gorm.io/gorm"
)

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortByUploadTimeDesc
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type UploadQueryFilter BaseQuerier

func NewUploadQueryFilter() *UploadQueryFilter {
	return &UploadQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *UploadQueryFilter) ByStatus(status string) *UploadQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status)
	})
	return qf
}

type UploadQueryOptions BaseQuerier

func NewUploadQueryOptions() *UploadQueryOptions {
	return &UploadQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *UploadQueryOptions) WithSortOrder(sort SortOrder) *UploadQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByUploadTimeDesc:
			return tx.Order("upload_time DESC")
		default:
			return tx
		}
	})
	return o
}

func (o *UploadQueryOptions) WithLimit(limit int) *UploadQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit)
	})
	return o
}
