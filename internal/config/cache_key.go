package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentLoginKey returns the cache key for a student's login session.
func (r *CacheKeyStruct) StudentLoginKey(studentID string) string {
	return fmt.Sprintf("login:student:%s", studentID)
}

// ParentLoginKey returns the cache key for a parent's login session.
func (r *CacheKeyStruct) ParentLoginKey(parentID string) string {
	return fmt.Sprintf("login:parent:%s", parentID)
}

// StudentSnapshotKey returns the durable slot key for a student's exam
// session snapshot.
func (r *CacheKeyStruct) StudentSnapshotKey(studentID string) string {
	return fmt.Sprintf("student:%s:exam_session", studentID)
}

var CacheKey = NewCacheKeyStruct()
