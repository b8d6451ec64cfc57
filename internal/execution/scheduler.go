package execution

// Scheduler distributes jobs across workers
type Scheduler interface {
	Schedule(jobCount, workerCount int) [][]int
}

// RoundRobinScheduler distributes jobs evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes job indexes evenly across workers using round-robin.
// Each worker's slice is in ascending order.
func (s *RoundRobinScheduler) Schedule(jobCount, workerCount int) [][]int {
	if workerCount <= 0 {
		workerCount = 1
	}

	distribution := make([][]int, workerCount)
	for i := range distribution {
		distribution[i] = make([]int, 0)
	}

	for i := 0; i < jobCount; i++ {
		workerIndex := i % workerCount
		distribution[workerIndex] = append(distribution[workerIndex], i)
	}

	return distribution
}
