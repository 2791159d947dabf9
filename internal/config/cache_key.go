package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AttemptProgressKey returns the cache key for a student's in-flight answers
// (question ID → answer draft) during an attempt.
func (r *CacheKeyStruct) AttemptProgressKey(examID, studentEmail string) string {
	return fmt.Sprintf("student:%s:exam:%s:progress", studentEmail, examID)
}

// AttemptStartKey returns the cache key for an attempt's start timestamp.
func (r *CacheKeyStruct) AttemptStartKey(examID, studentEmail string) string {
	return fmt.Sprintf("student:%s:exam:%s:started_at", studentEmail, examID)
}

// AttemptWarningsKey returns the cache key for an attempt's warning counter.
func (r *CacheKeyStruct) AttemptWarningsKey(examID, studentEmail string) string {
	return fmt.Sprintf("student:%s:exam:%s:warnings", studentEmail, examID)
}

// StudentActiveExamKey returns the cache key for a student's currently active exam.
func (r *CacheKeyStruct) StudentActiveExamKey(studentEmail string) string {
	return fmt.Sprintf("student:%s:active_exam", studentEmail)
}

var CacheKey = NewCacheKeyStruct()
