package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"stock-analysis-backend/internal/model"
)

const taskTTL = 30 * time.Minute

// TaskStatus 异步分析任务状态
type TaskStatus struct {
	TaskID    string          `json:"task_id"`
	Status    string          `json:"status"` // pending, running, done, canceled
	Current   string          `json:"current_code,omitempty"`
	Done      int             `json:"done"`
	Total     int             `json:"total"`
	Results   []*model.Report `json:"results,omitempty"`
	Errors    []string        `json:"errors,omitempty"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type analyzeTask struct {
	id        string
	status    string
	canceled  bool
	requestID string
	current   string
	done      int
	total     int
	results   []*model.Report
	errs      []string
	createdAt time.Time
	expiresAt time.Time
}

// CreateTask 创建异步批量分析任务，requestID相同时幂等返回已有任务
func (s *AnalyzeService) CreateTask(codes []string, requestID string) (TaskStatus, bool, error) {
	if len(codes) == 0 {
		return TaskStatus{}, false, fmt.Errorf("请选择至少一只标的")
	}
	requestID = strings.TrimSpace(requestID)
	now := time.Now()

	s.mu.Lock()
	s.cleanupExpiredLocked(now)
	if requestID != "" {
		if existingID, ok := s.requestTaskMap[requestID]; ok {
			if t, ok2 := s.tasks[existingID]; ok2 && now.Before(t.expiresAt) {
				out := buildTaskStatus(t)
				s.mu.Unlock()
				return out, false, nil
			}
			delete(s.requestTaskMap, requestID)
		}
	}
	s.mu.Unlock()

	t := &analyzeTask{
		id:        newTaskID(),
		status:    "pending",
		total:     len(codes),
		createdAt: now,
		expiresAt: now.Add(taskTTL),
		requestID: requestID,
	}

	s.mu.Lock()
	s.tasks[t.id] = t
	if requestID != "" {
		s.requestTaskMap[requestID] = t.id
	}
	s.mu.Unlock()

	go s.runTask(t, codes)
	return TaskStatus{TaskID: t.id, Status: "pending", Total: len(codes), ExpiresAt: t.expiresAt}, true, nil
}

// TaskStatus 查询任务状态
func (s *AnalyzeService) TaskStatus(taskID string) (TaskStatus, bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupExpiredLocked(now)
	t, ok := s.tasks[taskID]
	if !ok {
		return TaskStatus{}, false
	}
	return buildTaskStatus(t), true
}

// CancelTask 取消任务，已结束的任务原样返回
func (s *AnalyzeService) CancelTask(taskID string) (TaskStatus, bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupExpiredLocked(now)
	t, ok := s.tasks[taskID]
	if !ok {
		return TaskStatus{}, false
	}

	switch t.status {
	case "done", "canceled":
		return buildTaskStatus(t), true
	default:
		t.canceled = true
		t.status = "canceled"
		t.current = ""
		if t.requestID != "" {
			delete(s.requestTaskMap, t.requestID)
		}
		return buildTaskStatus(t), true
	}
}

// runTask 顺序执行任务，单标的失败记录错误后继续
func (s *AnalyzeService) runTask(t *analyzeTask, codes []string) {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	s.mu.Lock()
	if t.status == "pending" {
		t.status = "running"
	}
	s.mu.Unlock()

	for i, code := range codes {
		s.mu.Lock()
		if t.canceled {
			s.mu.Unlock()
			return
		}
		t.current = code
		s.mu.Unlock()

		report, err := s.AnalyzeOne(code, false)

		s.mu.Lock()
		if t.canceled {
			s.mu.Unlock()
			return
		}
		if err != nil {
			t.errs = append(t.errs, fmt.Sprintf("分析 %s 失败: %v", code, err))
		} else {
			t.results = append(t.results, report)
		}
		t.done = i + 1
		s.mu.Unlock()
	}

	s.mu.Lock()
	t.status = "done"
	t.current = ""
	if t.requestID != "" {
		delete(s.requestTaskMap, t.requestID)
	}
	s.mu.Unlock()
}

func (s *AnalyzeService) cleanupExpiredLocked(now time.Time) {
	for id, t := range s.tasks {
		if now.After(t.expiresAt) {
			delete(s.tasks, id)
		}
	}
	for rid, tid := range s.requestTaskMap {
		t, ok := s.tasks[tid]
		if !ok || now.After(t.expiresAt) {
			delete(s.requestTaskMap, rid)
		}
	}
}

func newTaskID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func buildTaskStatus(t *analyzeTask) TaskStatus {
	out := TaskStatus{
		TaskID:    t.id,
		Status:    t.status,
		Current:   t.current,
		Done:      t.done,
		Total:     t.total,
		Errors:    append([]string(nil), t.errs...),
		ExpiresAt: t.expiresAt,
	}
	if t.status == "done" {
		out.Results = append([]*model.Report(nil), t.results...)
	}
	return out
}
