package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job records one unit of work started from the interactive shell,
// typically a training run, so its outcome can be inspected later.
type Job struct {
	ID          string
	Type        string
	Description string
	Status      JobStatus
	StartTime   time.Time
	EndTime     *time.Time
	Error       error
	Result      any
	Logs        []string
	mu          sync.RWMutex
}

type Manager struct {
	jobs map[string]*Job
	mu   sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		jobs: make(map[string]*Job),
	}
}

// Run executes fn under a new job record and returns the finished job.
func (m *Manager) Run(jobType, description string, fn func(*Job) (any, error)) *Job {
	job := m.create(jobType, description)

	result, err := fn(job)

	job.mu.Lock()
	now := time.Now()
	job.EndTime = &now
	if err != nil {
		job.Status = JobFailed
		job.Error = err
	} else {
		job.Status = JobCompleted
		job.Result = result
	}
	job.mu.Unlock()

	return job
}

func (m *Manager) create(jobType, description string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &Job{
		ID:          fmt.Sprintf("job_%s_%d", jobType, time.Now().UnixNano()),
		Type:        jobType,
		Description: description,
		Status:      JobRunning,
		StartTime:   time.Now(),
	}

	m.jobs[job.ID] = job
	return job
}

func (m *Manager) Get(jobID string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	return job, exists
}

// List returns all jobs, oldest first.
func (m *Manager) List() []*Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.Before(jobs[j].StartTime)
	})
	return jobs
}

func (j *Job) AddLog(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Logs = append(j.Logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), message))
}

func (j *Job) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

func (j *Job) GetLogs() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	logs := make([]string, len(j.Logs))
	copy(logs, j.Logs)
	return logs
}
