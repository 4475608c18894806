package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/jsvanda/infoboard/internal/domain/calendar"
	"github.com/jsvanda/infoboard/internal/domain/place"
	"github.com/jsvanda/infoboard/internal/domain/sportdata"
	"github.com/jsvanda/infoboard/internal/platform/logging"
)

type RefreshInput struct {
	// Targets narrows the refresh to named datasets. Empty means all.
	Targets    []string
	MaxWorkers int
}

type RefreshResult struct {
	TaskCount    int                 `json:"task_count"`
	SuccessCount int                 `json:"success_count"`
	FailedCount  int                 `json:"failed_count"`
	WorkerCount  int                 `json:"worker_count"`
	Tasks        []RefreshTaskResult `json:"tasks"`
}

type RefreshTaskResult struct {
	Target     string `json:"target"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

const (
	refreshStatusSuccess = "success"
	refreshStatusFailed  = "failed"

	defaultRefreshWorkers = 4
	maxRefreshWorkers     = 16
)

type refreshTask struct {
	target string
	run    func(ctx context.Context) error
}

// RefreshService warms every cache-backed dataset ahead of expiry so
// interactive requests rarely pay the upstream latency.
type RefreshService struct {
	results  *ResultsService
	tvguide  *TVGuideService
	calendar *CalendarService
	places   *PlaceService
	logger   *logging.Logger
}

func NewRefreshService(results *ResultsService, tvguide *TVGuideService, cal *CalendarService, places *PlaceService, logger *logging.Logger) *RefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RefreshService{
		results:  results,
		tvguide:  tvguide,
		calendar: cal,
		places:   places,
		logger:   logger,
	}
}

func (s *RefreshService) Refresh(ctx context.Context, input RefreshInput) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshService.Refresh")
	defer span.End()

	tasks, err := s.selectTasks(input.Targets)
	if err != nil {
		return RefreshResult{}, err
	}

	workerCount := normalizeRefreshWorkerCount(input.MaxWorkers, len(tasks))
	result := RefreshResult{
		TaskCount:   len(tasks),
		WorkerCount: workerCount,
		Tasks:       make([]RefreshTaskResult, 0, len(tasks)),
	}
	if len(tasks) == 0 {
		return result, nil
	}

	rows := make(chan RefreshTaskResult, len(tasks))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RefreshTaskResult{Target: task.target}

			if runErr := task.run(ctx); runErr != nil {
				row.Status = refreshStatusFailed
				row.Message = runErr.Error()
				failedCount.Add(1)
			} else {
				row.Status = refreshStatusSuccess
				successCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()

			rows <- row
		}); err != nil {
			workers.Done()
			return RefreshResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].Target < result.Tasks[j].Target
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "refresh finished",
		"tasks", result.TaskCount, "success", result.SuccessCount, "failed", result.FailedCount)
	return result, nil
}

func (s *RefreshService) selectTasks(targets []string) ([]refreshTask, error) {
	all := s.allTasks()

	if len(targets) == 0 {
		return all, nil
	}

	byTarget := make(map[string]refreshTask, len(all))
	for _, task := range all {
		byTarget[task.target] = task
	}

	selected := make([]refreshTask, 0, len(targets))
	seen := make(map[string]struct{}, len(targets))
	for _, raw := range targets {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		task, ok := byTarget[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown refresh target %q", ErrInvalidInput, raw)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		selected = append(selected, task)
	}
	return selected, nil
}

func (s *RefreshService) allTasks() []refreshTask {
	tasks := make([]refreshTask, 0, 16)

	for _, sport := range []sportdata.Sport{sportdata.SportFootball, sportdata.SportHockey, sportdata.SportBasketball} {
		sport := sport
		tasks = append(tasks, refreshTask{
			target: "results:" + string(sport),
			run: func(ctx context.Context) error {
				return s.results.reloadMatches(ctx, sport)
			},
		})
	}
	tasks = append(tasks, refreshTask{
		target: "results:races",
		run:    s.results.reloadRaces,
	})

	tasks = append(tasks, refreshTask{
		target: "tv:schedule",
		run:    s.tvguide.reloadSchedule,
	})

	for _, slug := range calendar.Slugs() {
		slug := slug
		tasks = append(tasks, refreshTask{
			target: "calendar:" + slug,
			run: func(ctx context.Context) error {
				return s.calendar.reloadCalendar(ctx, slug)
			},
		})
	}

	for _, kind := range []place.Kind{place.KindPharmacy, place.KindFuel, place.KindHospital, place.KindPostOffice} {
		kind := kind
		tasks = append(tasks, refreshTask{
			target: "places:" + string(kind),
			run: func(ctx context.Context) error {
				return s.places.reloadCandidates(ctx, kind)
			},
		})
	}

	return tasks
}

func normalizeRefreshWorkerCount(requested, taskCount int) int {
	workers := requested
	if workers <= 0 {
		workers = defaultRefreshWorkers
	}
	if workers > maxRefreshWorkers {
		workers = maxRefreshWorkers
	}
	if taskCount > 0 && workers > taskCount {
		workers = taskCount
	}
	return workers
}
