package generation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"inkwell-book-api/internal/domain/entity"
	"inkwell-book-api/internal/domain/repository"
	"inkwell-book-api/internal/infrastructure/power"
	apperrors "inkwell-book-api/pkg/errors"
)

// --- 内存仓储 ---

type memProjects struct {
	mu       sync.Mutex
	projects map[string]*entity.Project
	statuses []entity.ProjectStatus
}

func newMemProjects() *memProjects {
	return &memProjects{projects: make(map[string]*entity.Project)}
}

func (m *memProjects) Create(_ context.Context, p *entity.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *memProjects) GetByID(_ context.Context, id string) (*entity.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memProjects) Update(_ context.Context, p *entity.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *memProjects) UpdateOutline(_ context.Context, id string, outline []entity.OutlineChapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.projects[id]; ok {
		p.Outline = outline
	}
	return nil
}

func (m *memProjects) UpdateStatus(_ context.Context, id string, status entity.ProjectStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.projects[id]; ok {
		p.Status = status
	}
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memProjects) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	return nil
}

func (m *memProjects) List(_ context.Context, _ string, pagination repository.Pagination) (*repository.PagedResult[*entity.Project], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]*entity.Project, 0, len(m.projects))
	for _, p := range m.projects {
		items = append(items, p)
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

type memChapters struct {
	mu       sync.Mutex
	nextID   int
	chapters map[string]*entity.Chapter
}

func newMemChapters() *memChapters {
	return &memChapters{chapters: make(map[string]*entity.Chapter)}
}

func (m *memChapters) seed(ch *entity.Chapter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if ch.ID == "" {
		ch.ID = fmt.Sprintf("ch-%d", m.nextID)
	}
	m.chapters[ch.ID] = ch
}

func (m *memChapters) Create(_ context.Context, ch *entity.Chapter) error {
	m.seed(ch)
	return nil
}

func (m *memChapters) GetByID(_ context.Context, id string) (*entity.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.chapters[id]
	if !ok {
		return nil, nil
	}
	cp := *ch
	return &cp, nil
}

func (m *memChapters) GetByNumber(_ context.Context, projectID string, number int) (*entity.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.chapters {
		if ch.ProjectID == projectID && ch.Number == number {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memChapters) ListByProject(_ context.Context, projectID string) ([]*entity.Chapter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Chapter
	for _, ch := range m.chapters {
		if ch.ProjectID == projectID {
			cp := *ch
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// UpdateResult 只合并单章的生成结果字段，不触碰其他行
func (m *memChapters) UpdateResult(_ context.Context, ch *entity.Chapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.chapters[ch.ID]
	if !ok {
		return fmt.Errorf("chapter %s not found", ch.ID)
	}
	stored.Content = ch.Content
	stored.Status = ch.Status
	stored.FailureMsg = ch.FailureMsg
	stored.Metadata = ch.Metadata
	stored.WordCount = ch.WordCount
	return nil
}

func (m *memChapters) UpdateStatus(_ context.Context, id string, status entity.ChapterStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.chapters[id]; ok {
		ch.Status = status
	}
	return nil
}

// ReplaceForProject 按大纲对齐：补行、刷新标题摘要、删除大纲外的行
func (m *memChapters) ReplaceForProject(_ context.Context, projectID string, outline []entity.OutlineChapter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byNumber := make(map[int]*entity.Chapter)
	for _, ch := range m.chapters {
		if ch.ProjectID == projectID {
			byNumber[ch.Number] = ch
		}
	}

	keep := make(map[int]bool, len(outline))
	for _, oc := range outline {
		keep[oc.Number] = true
		if existing, ok := byNumber[oc.Number]; ok {
			existing.Title = oc.Title
			existing.Summary = oc.Summary
			continue
		}
		m.nextID++
		ch := entity.NewChapter(projectID, oc)
		ch.ID = fmt.Sprintf("ch-%d", m.nextID)
		m.chapters[ch.ID] = ch
	}

	for id, ch := range m.chapters {
		if ch.ProjectID == projectID && !keep[ch.Number] {
			delete(m.chapters, id)
		}
	}
	return nil
}

type memSources struct {
	items []*entity.SourceMaterial
}

func (m *memSources) Create(_ context.Context, s *entity.SourceMaterial) error {
	m.items = append(m.items, s)
	return nil
}
func (m *memSources) GetByID(_ context.Context, _ string) (*entity.SourceMaterial, error) {
	return nil, nil
}
func (m *memSources) Update(_ context.Context, _ *entity.SourceMaterial) error { return nil }
func (m *memSources) Delete(_ context.Context, _ string) error                 { return nil }
func (m *memSources) ListByProject(_ context.Context, _ string) ([]*entity.SourceMaterial, error) {
	return m.items, nil
}

type memJobs struct {
	mu   sync.Mutex
	jobs map[string]*entity.GenerationJob
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: make(map[string]*entity.GenerationJob)}
}

func (m *memJobs) Create(_ context.Context, j *entity.GenerationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *memJobs) GetByID(_ context.Context, id string) (*entity.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (m *memJobs) Update(_ context.Context, j *entity.GenerationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *j
	m.jobs[j.ID] = &cp
	return nil
}

func (m *memJobs) UpdateProgress(_ context.Context, id string, cursor, done, failed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Cursor = cursor
		j.ChaptersDone = done
		j.ChaptersFailed = failed
	}
	return nil
}

func (m *memJobs) UpdateStatus(_ context.Context, id string, status entity.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[id]; ok {
		j.Status = status
	}
	return nil
}

func (m *memJobs) GetActiveByProject(_ context.Context, projectID string) (*entity.GenerationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.ProjectID == projectID && !j.Status.IsTerminal() {
			cp := *j
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memJobs) ListByProject(_ context.Context, projectID string, pagination repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*entity.GenerationJob
	for _, j := range m.jobs {
		if j.ProjectID == projectID {
			cp := *j
			items = append(items, &cp)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), pagination), nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- 脚本化生成器与通知记录 ---

type genCall struct {
	result *Result
	err    error
	after  func()
}

type scriptGenerator struct {
	mu      sync.Mutex
	scripts map[int][]genCall
	calls   []int
}

func newScriptGenerator() *scriptGenerator {
	return &scriptGenerator{scripts: make(map[int][]genCall)}
}

func (g *scriptGenerator) on(number int, calls ...genCall) {
	g.scripts[number] = append(g.scripts[number], calls...)
}

func (g *scriptGenerator) GenerateChapter(_ context.Context, req *Request) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	number := req.Chapter.Number
	g.calls = append(g.calls, number)

	queue := g.scripts[number]
	if len(queue) == 0 {
		return nil, fmt.Errorf("unexpected generation call for chapter %d", number)
	}
	call := queue[0]
	g.scripts[number] = queue[1:]
	if call.after != nil {
		call.after()
	}
	return call.result, call.err
}

func ok(content string) genCall {
	return genCall{result: &Result{Content: content, Provider: "openai", Model: "gpt-4o", TokensUsed: 42}}
}

func fail(err error) genCall {
	return genCall{err: err}
}

type recordNotifier struct {
	completed []entity.GenerationJob
	aborted   []entity.GenerationJob
	cancelled []entity.GenerationJob
	reasons   []string
}

func (n *recordNotifier) RunCompleted(_ context.Context, job *entity.GenerationJob) error {
	n.completed = append(n.completed, *job)
	return nil
}

func (n *recordNotifier) RunAborted(_ context.Context, job *entity.GenerationJob, reason string) error {
	n.aborted = append(n.aborted, *job)
	n.reasons = append(n.reasons, reason)
	return nil
}

func (n *recordNotifier) RunCancelled(_ context.Context, job *entity.GenerationJob) error {
	n.cancelled = append(n.cancelled, *job)
	return nil
}

type recordSleeper struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordSleeper) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

// --- 测试脚手架 ---

type pipelineFixture struct {
	projects *memProjects
	chapters *memChapters
	sources  *memSources
	jobs     *memJobs
	gen      *scriptGenerator
	notifier *recordNotifier
	sleeper  *recordSleeper
	pipeline *Pipeline
}

func newFixture(outlineLen int) *pipelineFixture {
	f := &pipelineFixture{
		projects: newMemProjects(),
		chapters: newMemChapters(),
		sources:  &memSources{},
		jobs:     newMemJobs(),
		gen:      newScriptGenerator(),
		notifier: &recordNotifier{},
		sleeper:  &recordSleeper{},
	}

	outline := make([]entity.OutlineChapter, 0, outlineLen)
	for i := 1; i <= outlineLen; i++ {
		outline = append(outline, entity.OutlineChapter{
			Number:  i,
			Title:   fmt.Sprintf("Chapter %d", i),
			Summary: fmt.Sprintf("summary %d", i),
		})
	}
	project := entity.NewProject("owner-1", "My Book")
	project.ID = "proj-1"
	project.Outline = outline
	f.projects.projects[project.ID] = project

	retry := NewRetryPolicy(3, time.Second, NewDefaultClassifier())
	retry.Sleep = f.sleeper.sleep

	f.pipeline = NewPipeline(PipelineOptions{
		Projects:   f.projects,
		Chapters:   f.chapters,
		Sources:    f.sources,
		Jobs:       f.jobs,
		Generator:  f.gen,
		Reconciler: NewReconciler(f.chapters, passthroughTx{}),
		Retry:      retry,
		Guard:      NewGuard(),
		Notifier:   f.notifier,
		WakeLock:   power.NewSystemdCoordinator(false),
	})
	return f
}

func (f *pipelineFixture) enqueueJob(style entity.WritingStyle) *entity.GenerationJob {
	job := entity.NewGenerationJob("proj-1", style)
	job.ID = "job-1"
	cp := *job
	f.jobs.jobs[job.ID] = &cp
	return job
}

func (f *pipelineFixture) storedJob(t *testing.T) *entity.GenerationJob {
	t.Helper()
	job, err := f.jobs.GetByID(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if job == nil {
		t.Fatal("job disappeared from store")
	}
	return job
}

func (f *pipelineFixture) storedChapter(t *testing.T, number int) *entity.Chapter {
	t.Helper()
	ch, err := f.chapters.GetByNumber(context.Background(), "proj-1", number)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if ch == nil {
		t.Fatalf("chapter %d not found", number)
	}
	return ch
}

// --- 测试 ---

func TestRunGeneratesAllChapters(t *testing.T) {
	f := newFixture(3)
	f.enqueueJob(entity.StyleStandard)
	f.gen.on(1, ok("content one"))
	f.gen.on(2, ok("content two"))
	f.gen.on(3, ok("content three"))

	if err := f.pipeline.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	job := f.storedJob(t)
	if job.Status != entity.JobStatusCompleted {
		t.Fatalf("job status = %s, want completed", job.Status)
	}
	if job.ChaptersDone != 3 || job.ChaptersFailed != 0 {
		t.Fatalf("done/failed = %d/%d, want 3/0", job.ChaptersDone, job.ChaptersFailed)
	}
	if job.Cursor != 3 {
		t.Fatalf("cursor = %d, want 3", job.Cursor)
	}

	for n := 1; n <= 3; n++ {
		ch := f.storedChapter(t, n)
		if !ch.IsDone() {
			t.Fatalf("chapter %d status = %s content %q, want done", n, ch.Status, ch.Content)
		}
		if ch.Metadata == nil || ch.Metadata.Attempts != 1 {
			t.Fatalf("chapter %d metadata attempts incorrect: %+v", n, ch.Metadata)
		}
	}

	project, _ := f.projects.GetByID(context.Background(), "proj-1")
	if project.Status != entity.ProjectStatusCompleted {
		t.Fatalf("project status = %s, want completed", project.Status)
	}
	if len(f.notifier.completed) != 1 {
		t.Fatalf("completed notifications = %d, want 1", len(f.notifier.completed))
	}
}

func TestRunCreatesChapterRowsFromOutline(t *testing.T) {
	f := newFixture(5)
	f.enqueueJob(entity.StyleStandard)
	// 只有 3 行残留，大纲有 5 章：对齐后应补齐为 5 行再生成
	for n := 1; n <= 3; n++ {
		ch := entity.NewChapter("proj-1", entity.OutlineChapter{Number: n, Title: "stale title"})
		f.chapters.seed(ch)
	}
	for n := 1; n <= 5; n++ {
		f.gen.on(n, ok(fmt.Sprintf("content %d", n)))
	}

	if err := f.pipeline.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	rows, _ := f.chapters.ListByProject(context.Background(), "proj-1")
	if len(rows) != 5 {
		t.Fatalf("chapter rows = %d, want 5", len(rows))
	}
	// 标题摘要按大纲刷新
	if rows[0].Title != "Chapter 1" {
		t.Fatalf("chapter 1 title = %q, want refreshed from outline", rows[0].Title)
	}
	if f.storedJob(t).ChaptersTotal != 5 {
		t.Fatalf("chapters_total = %d, want 5", f.storedJob(t).ChaptersTotal)
	}
}

func TestRunResumesSkippingDoneChapters(t *testing.T) {
	f := newFixture(3)
	f.enqueueJob(entity.StyleStandard)

	// 第一章已完成；第二章 generating 残留视为未完成
	ch1 := entity.NewChapter("proj-1", entity.OutlineChapter{Number: 1, Title: "Chapter 1"})
	ch1.MarkDone("existing content", nil)
	f.chapters.seed(ch1)

	ch2 := entity.NewChapter("proj-1", entity.OutlineChapter{Number: 2, Title: "Chapter 2"})
	ch2.MarkGenerating()
	f.chapters.seed(ch2)

	f.gen.on(2, ok("regenerated two"))
	f.gen.on(3, ok("content three"))

	if err := f.pipeline.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	for _, called := range f.gen.calls {
		if called == 1 {
			t.Fatal("chapter 1 was regenerated, expected skip")
		}
	}

	if got := f.storedChapter(t, 1).Content; got != "existing content" {
		t.Fatalf("chapter 1 content = %q, want untouched", got)
	}
	if got := f.storedChapter(t, 2).Content; got != "regenerated two" {
		t.Fatalf("chapter 2 content = %q, want regenerated", got)
	}

	job := f.storedJob(t)
	if job.Status != entity.JobStatusCompleted || job.ChaptersDone != 3 {
		t.Fatalf("job = %s done=%d, want completed done=3", job.Status, job.ChaptersDone)
	}
}

func TestRunFatalErrorAbortsRemainingChapters(t *testing.T) {
	f := newFixture(4)
	f.enqueueJob(entity.StyleStandard)
	f.gen.on(1, ok("content one"))
	f.gen.on(2, fail(apperrors.New(apperrors.CodeCredentialRevoked, "invalid api key")))

	if err := f.pipeline.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	job := f.storedJob(t)
	if job.Status != entity.JobStatusAborted {
		t.Fatalf("job status = %s, want aborted", job.Status)
	}
	if job.AbortReason == "" {
		t.Fatal("abort reason empty")
	}

	ch2 := f.storedChapter(t, 2)
	if ch2.Status != entity.ChapterStatusFailed || ch2.Content != PlaceholderFatal {
		t.Fatalf("chapter 2 = %s %q, want failed with fatal placeholder", ch2.Status, ch2.Content)
	}

	// 后续章节保持 pending，不再调用生成
	for n := 3; n <= 4; n++ {
		ch := f.storedChapter(t, n)
		if ch.Status != entity.ChapterStatusPending {
			t.Fatalf("chapter %d status = %s, want pending", n, ch.Status)
		}
	}
	if len(f.gen.calls) != 2 {
		t.Fatalf("generator calls = %v, want exactly [1 2]", f.gen.calls)
	}

	// 致命错误不退避重试
	if len(f.sleeper.delays) != 0 {
		t.Fatalf("sleeps = %v, want none for fatal error", f.sleeper.delays)
	}
	if len(f.notifier.aborted) != 1 {
		t.Fatalf("aborted notifications = %d, want 1", len(f.notifier.aborted))
	}
}

func TestRunTransientFailureIsolatedToChapter(t *testing.T) {
	f := newFixture(3)
	f.enqueueJob(entity.StyleStandard)
	transient := errors.New("upstream temporarily unavailable")
	f.gen.on(1, ok("content one"))
	f.gen.on(2, fail(transient), fail(transient), fail(transient))
	f.gen.on(3, ok("content three"))

	if err := f.pipeline.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	job := f.storedJob(t)
	if job.Status != entity.JobStatusCompleted {
		t.Fatalf("job status = %s, want completed", job.Status)
	}
	if job.ChaptersDone != 2 || job.ChaptersFailed != 1 {
		t.Fatalf("done/failed = %d/%d, want 2/1", job.ChaptersDone, job.ChaptersFailed)
	}

	ch2 := f.storedChapter(t, 2)
	if ch2.Status != entity.ChapterStatusFailed || ch2.Content != PlaceholderRetry {
		t.Fatalf("chapter 2 = %s %q, want failed with retry placeholder", ch2.Status, ch2.Content)
	}
	if !f.storedChapter(t, 3).IsDone() {
		t.Fatal("chapter 3 not generated, expected isolation of chapter 2 failure")
	}

	// 3 次尝试之间恰好 2 次退避：2s、4s
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(f.sleeper.delays) != len(want) {
		t.Fatalf("sleeps = %v, want %v", f.sleeper.delays, want)
	}
	for i := range want {
		if f.sleeper.delays[i] != want[i] {
			t.Fatalf("sleep[%d] = %v, want %v", i, f.sleeper.delays[i], want[i])
		}
	}

	// 存在失败章节时项目不进入 completed
	project, _ := f.projects.GetByID(context.Background(), "proj-1")
	if project.Status == entity.ProjectStatusCompleted {
		t.Fatal("project marked completed despite failed chapter")
	}
	if len(f.notifier.completed) != 1 {
		t.Fatalf("completed notifications = %d, want 1", len(f.notifier.completed))
	}
}

func TestRunStopsAfterDurableCancel(t *testing.T) {
	f := newFixture(3)
	f.enqueueJob(entity.StyleStandard)
	// 第一章生成期间用户发起取消
	f.gen.on(1, genCall{
		result: &Result{Content: "content one"},
		after: func() {
			_ = f.jobs.UpdateStatus(context.Background(), "job-1", entity.JobStatusCancelled)
		},
	})

	if err := f.pipeline.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	job := f.storedJob(t)
	if job.Status != entity.JobStatusCancelled {
		t.Fatalf("job status = %s, want cancelled", job.Status)
	}
	if len(f.gen.calls) != 1 {
		t.Fatalf("generator calls = %v, want only chapter 1", f.gen.calls)
	}

	// 已生成的第一章保留，后续保持 pending
	if !f.storedChapter(t, 1).IsDone() {
		t.Fatal("chapter 1 lost after cancel")
	}
	for n := 2; n <= 3; n++ {
		if got := f.storedChapter(t, n).Status; got != entity.ChapterStatusPending {
			t.Fatalf("chapter %d status = %s, want pending", n, got)
		}
	}
	if len(f.notifier.cancelled) != 1 {
		t.Fatalf("cancelled notifications = %d, want 1", len(f.notifier.cancelled))
	}
}

func TestRunShutdownLeavesJobResumable(t *testing.T) {
	f := newFixture(3)
	f.enqueueJob(entity.StyleStandard)

	ctx, cancel := context.WithCancel(context.Background())
	f.gen.on(1, genCall{
		result: &Result{Content: "content one"},
		after:  cancel,
	})

	err := f.pipeline.Run(ctx, "job-1")
	if err == nil {
		t.Fatal("Run returned nil, want shutdown error for message redelivery")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}

	// 任务不落终态，重投后续作
	job := f.storedJob(t)
	if job.Status.IsTerminal() {
		t.Fatalf("job status = %s, want non-terminal for resume", job.Status)
	}
	if !f.storedChapter(t, 1).IsDone() {
		t.Fatal("chapter 1 progress lost on shutdown")
	}
}

func TestRunTerminalJobSkippedIdempotently(t *testing.T) {
	f := newFixture(2)
	job := f.enqueueJob(entity.StyleStandard)
	job.Complete()
	_ = f.jobs.Update(context.Background(), job)

	if err := f.pipeline.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(f.gen.calls) != 0 {
		t.Fatalf("generator calls = %v, want none for terminal job", f.gen.calls)
	}
}

func TestRunRejectsConcurrentProjectRun(t *testing.T) {
	f := newFixture(2)
	f.enqueueJob(entity.StyleStandard)

	guard := f.pipeline.guard
	if !guard.TryAcquire("proj-1") {
		t.Fatal("precondition: guard acquire failed")
	}
	defer guard.Release("proj-1")

	err := f.pipeline.Run(context.Background(), "job-1")
	if err == nil {
		t.Fatal("Run returned nil, want rejection while project held")
	}
	if len(f.gen.calls) != 0 {
		t.Fatalf("generator calls = %v, want none", f.gen.calls)
	}
}

func TestRunUsesJobStyle(t *testing.T) {
	f := newFixture(1)
	f.enqueueJob(entity.StyleSarcastic)

	var gotStyle entity.WritingStyle
	f.pipeline.generator = generatorFunc(func(ctx context.Context, req *Request) (*Result, error) {
		gotStyle = req.Style
		return &Result{Content: "snark"}, nil
	})

	if err := f.pipeline.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if gotStyle != entity.StyleSarcastic {
		t.Fatalf("request style = %s, want sarcastic", gotStyle)
	}
}

func TestRunPreservesConcurrentProjectEdits(t *testing.T) {
	f := newFixture(3)
	f.enqueueJob(entity.StyleStandard)
	f.gen.on(1, ok("content one"))
	// 第二章生成期间外部修改了书名，流水线落盘不得覆盖
	f.gen.on(2, genCall{
		result: &Result{Content: "content two"},
		after: func() {
			p, _ := f.projects.GetByID(context.Background(), "proj-1")
			p.Title = "Renamed Book"
			_ = f.projects.Update(context.Background(), p)
		},
	})
	f.gen.on(3, ok("content three"))

	if err := f.pipeline.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	project, _ := f.projects.GetByID(context.Background(), "proj-1")
	if project.Title != "Renamed Book" {
		t.Fatalf("title = %q, want external rename preserved", project.Title)
	}
	if project.Status != entity.ProjectStatusCompleted {
		t.Fatalf("project status = %s, want completed", project.Status)
	}
	if got := f.storedChapter(t, 2).Content; got != "content two" {
		t.Fatalf("chapter 2 content = %q", got)
	}
}

type generatorFunc func(ctx context.Context, req *Request) (*Result, error)

func (f generatorFunc) GenerateChapter(ctx context.Context, req *Request) (*Result, error) {
	return f(ctx, req)
}
