package shell

import "sync"

// Job is a pipeline running in the background.
type Job struct {
	PID         int
	CommandLine string
}

// JobTable tracks pipelines whose head command is asynchronous, in the order
// they were started.
type JobTable struct {
	mu        sync.Mutex
	pipelines []*Pipeline
}

// add registers p unless it terminated before it could be added.
func (jt *JobTable) add(p *Pipeline) bool {
	jt.mu.Lock()
	defer jt.mu.Unlock()

	if p.terminated.Load() {
		return false
	}
	jt.pipelines = append(jt.pipelines, p)
	return true
}

// remove drops the pipeline with the given pid.
func (jt *JobTable) remove(pid int) (*Pipeline, bool) {
	jt.mu.Lock()
	defer jt.mu.Unlock()

	for i, p := range jt.pipelines {
		if p.PID == pid {
			jt.pipelines = append(jt.pipelines[:i], jt.pipelines[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

// Get returns the running pipeline with the given pid.
func (jt *JobTable) Get(pid int) (*Pipeline, bool) {
	jt.mu.Lock()
	defer jt.mu.Unlock()

	for _, p := range jt.pipelines {
		if p.PID == pid {
			return p, true
		}
	}
	return nil, false
}

// List returns the running jobs in registration order.
func (jt *JobTable) List() []Job {
	jt.mu.Lock()
	defer jt.mu.Unlock()

	out := make([]Job, 0, len(jt.pipelines))
	for _, p := range jt.pipelines {
		out = append(out, Job{PID: p.PID, CommandLine: p.CommandLine})
	}
	return out
}

// Len returns the number of running jobs.
func (jt *JobTable) Len() int {
	jt.mu.Lock()
	defer jt.mu.Unlock()

	return len(jt.pipelines)
}
