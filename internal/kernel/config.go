package kernel

// TimerRateHz is the declared tick rate of the simulated timer (spec §9
// open question, resolved: 100 Hz, matching the seconds<->ticks
// conversions PROC_SLEEP and SYS_GET_TIME assume). internal/ksyscall keeps
// its own copy, kernelTimerRateHz, because it cannot import this package;
// the two must stay equal.
const TimerRateHz = 100

// Config collects the configuration constants spec §6 lists, threaded
// through a Context value instead of held as package globals so tests can
// run many independent kernels concurrently.
type Config struct {
	ProcMax       int // PROC_MAX
	ProcStackSize int // PROC_STACK_SIZE
	ProcNameLen   int // PROC_NAME_LEN

	RunQueueCap    int // QUEUE_SIZE for the run queue
	SleepQueueCap  int // QUEUE_SIZE for the sleep queue
	WaiterQueueCap int // QUEUE_SIZE for each mutex/semaphore waiter queue

	RingBufSize int // RINGBUF_SIZE

	MutexMax int // MUTEX_MAX
	SemMax   int // SEM_MAX

	SchedulerTimeslice uint64 // SCHEDULER_TIMESLICE, in ticks

	TTYCount      int // number of virtual consoles to seed
	SeedShellCount int // boot-seeded shell processes
	SeedTestCount  int // boot-seeded smoke-test processes

	OSName string
}

// DefaultConfig returns the values spec.md assumes or suggests where it
// leaves a choice to the implementer.
func DefaultConfig() Config {
	return Config{
		ProcMax:       64,
		ProcStackSize: 4096,
		ProcNameLen:   32,

		RunQueueCap:    64,
		SleepQueueCap:  64,
		WaiterQueueCap: 64,

		RingBufSize: 1024,

		MutexMax: 32,
		SemMax:   32,

		SchedulerTimeslice: 3,

		TTYCount:       4,
		SeedShellCount: 2,
		SeedTestCount:  1,

		OSName: "preemptos",
	}
}
