package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/assessment-engine/internal/models"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/selector"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memRepo is an in-memory repositories.Repository. Transactions run fn
// directly without rollback.
type memRepo struct {
	mu     sync.Mutex
	nextID uint

	questions       map[uint]models.Question
	attempts        []models.Attempt
	sessions        map[uint]models.PracticeSession
	logs            []models.SelectionLog
	cores           map[uint]models.AssessmentCore
	wrappers        map[uint]models.AssessmentWrapper
	submissions     map[uint]models.Submission
	wrapperAnalyses map[uint]models.WrapperAnalysis
	coreAnalyses    map[uint]models.CoreAnalysis
	subTopics       map[string]models.SubTopic
	userStats       map[string]models.UserConceptStat

	// conflicts forces the next analysis saves to lose their race.
	conflicts int
}

func newMemRepo() *memRepo {
	return &memRepo{
		nextID:          1000,
		questions:       make(map[uint]models.Question),
		sessions:        make(map[uint]models.PracticeSession),
		cores:           make(map[uint]models.AssessmentCore),
		wrappers:        make(map[uint]models.AssessmentWrapper),
		submissions:     make(map[uint]models.Submission),
		wrapperAnalyses: make(map[uint]models.WrapperAnalysis),
		coreAnalyses:    make(map[uint]models.CoreAnalysis),
		subTopics:       make(map[string]models.SubTopic),
		userStats:       make(map[string]models.UserConceptStat),
	}
}

func (r *memRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *memRepo) Question() repositories.QuestionRepository         { return memQuestions{r} }
func (r *memRepo) Attempt() repositories.AttemptRepository           { return memAttempts{r} }
func (r *memRepo) Session() repositories.SessionRepository           { return memSessions{r} }
func (r *memRepo) SelectionLog() repositories.SelectionLogRepository { return memSessions{r} }
func (r *memRepo) Assessment() repositories.AssessmentRepository     { return memAssessments{r} }
func (r *memRepo) Submission() repositories.SubmissionRepository     { return memSubmissions{r} }
func (r *memRepo) Analysis() repositories.AnalysisRepository         { return memAnalyses{r} }
func (r *memRepo) Topic() repositories.TopicRepository               { return memTopics{r} }
func (r *memRepo) UserStat() repositories.UserStatRepository         { return memTopics{r} }

func (r *memRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// ===== QUESTIONS =====

type memQuestions struct{ r *memRepo }

func (m memQuestions) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if q.ID == 0 {
		q.ID = m.r.id()
	}
	m.r.questions[q.ID] = *q
	return nil
}

func (m memQuestions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	q, ok := m.r.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &q, nil
}

func (m memQuestions) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]models.Question, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []models.Question
	for _, id := range ids {
		if q, ok := m.r.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m memQuestions) sorted() []models.Question {
	out := make([]models.Question, 0, len(m.r.questions))
	for _, q := range m.r.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memQuestions) FindOne(ctx context.Context, tx *gorm.DB, query selector.Query) (*models.Question, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var matches []models.Question
	for _, q := range m.sorted() {
		if query.Matches(&q) {
			matches = append(matches, q)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return query.Less(&matches[i], &matches[j]) })
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (m memQuestions) GetByLink(ctx context.Context, tx *gorm.DB, linkID uint) ([]models.Question, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []models.Question
	for _, q := range m.sorted() {
		if q.LinkID != nil && *q.LinkID == linkID {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LinkOrder < out[j].LinkOrder })
	return out, nil
}

func (m memQuestions) IncrementAttempts(ctx context.Context, tx *gorm.DB, id uint) (int, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	q, ok := m.r.questions[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	q.AttemptsCount++
	m.r.questions[id] = q
	return q.AttemptsCount, nil
}

func (m memQuestions) UpdateCalibration(ctx context.Context, tx *gorm.DB, id uint, level models.QuestionLevel, stats models.QuestionStatistics) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	q, ok := m.r.questions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	q.Level = level
	q.Statistics = stats
	m.r.questions[id] = q
	return nil
}

// ===== ATTEMPTS =====

type memAttempts struct{ r *memRepo }

func (m memAttempts) Create(ctx context.Context, tx *gorm.DB, a *models.Attempt) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	a.ID = m.r.id()
	m.r.attempts = append(m.r.attempts, *a)
	return nil
}

func (m memAttempts) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Attempt, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	for _, a := range m.r.attempts {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m memAttempts) List(ctx context.Context, tx *gorm.DB, f repositories.AttemptFilters) ([]models.Attempt, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []models.Attempt
	for _, a := range m.r.attempts {
		if f.QuestionID != nil && a.QuestionID != *f.QuestionID {
			continue
		}
		if f.UserID != nil && a.UserID != *f.UserID {
			continue
		}
		if f.SessionID != nil && (a.SessionID == nil || *a.SessionID != *f.SessionID) {
			continue
		}
		if f.OnlyAnswered && !a.IsAnswered {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m memAttempts) GetSummary(ctx context.Context, tx *gorm.DB, questionID uint) (*repositories.AttemptSummary, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var s repositories.AttemptSummary
	for _, a := range m.r.attempts {
		if a.QuestionID != questionID || !a.IsAnswered {
			continue
		}
		s.Answered++
		if a.IsCorrect {
			s.Correct++
		}
	}
	return &s, nil
}

// ===== SESSIONS =====

type memSessions struct{ r *memRepo }

func cloneSession(s models.PracticeSession) models.PracticeSession {
	s.Questions = append([]models.SessionQuestion(nil), s.Questions...)
	s.Filters = append([]models.SelectionCriteria(nil), s.Filters...)
	return s
}

func (m memSessions) Create(ctx context.Context, tx *gorm.DB, s *models.PracticeSession) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if s.ID == 0 {
		s.ID = m.r.id()
	}
	m.r.sessions[s.ID] = cloneSession(*s)
	return nil
}

func (m memSessions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.PracticeSession, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	s, ok := m.r.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	s = cloneSession(s)
	return &s, nil
}

func (m memSessions) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.PracticeSession, error) {
	return m.GetByID(ctx, tx, id)
}

func (m memSessions) Update(ctx context.Context, tx *gorm.DB, s *models.PracticeSession) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if _, ok := m.r.sessions[s.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.r.sessions[s.ID] = cloneSession(*s)
	return nil
}

func (m memSessions) CreateBatch(ctx context.Context, tx *gorm.DB, logs []models.SelectionLog) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	m.r.logs = append(m.r.logs, logs...)
	return nil
}

// ===== ASSESSMENTS =====

type memAssessments struct{ r *memRepo }

func (m memAssessments) CreateCore(ctx context.Context, tx *gorm.DB, core *models.AssessmentCore) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if core.ID == 0 {
		core.ID = m.r.id()
	}
	m.r.cores[core.ID] = *core
	return nil
}

func (m memAssessments) GetCore(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentCore, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	c, ok := m.r.cores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m memAssessments) GetCoreForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentCore, error) {
	return m.GetCore(ctx, tx, id)
}

func (m memAssessments) UpdateBonus(ctx context.Context, tx *gorm.DB, id uint, bonus models.BonusMap) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	c, ok := m.r.cores[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Bonus = datatypes.NewJSONType(bonus)
	m.r.cores[id] = c
	return nil
}

func (m memAssessments) CreateWrapper(ctx context.Context, tx *gorm.DB, w *models.AssessmentWrapper) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if w.ID == 0 {
		w.ID = m.r.id()
	}
	m.r.wrappers[w.ID] = *w
	return nil
}

func (m memAssessments) GetWrapper(ctx context.Context, tx *gorm.DB, id uint) (*models.AssessmentWrapper, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	w, ok := m.r.wrappers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &w, nil
}

func (m memAssessments) ListWrappersByCore(ctx context.Context, tx *gorm.DB, coreID uint) ([]models.AssessmentWrapper, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []models.AssessmentWrapper
	for _, w := range m.r.wrappers {
		if w.CoreID == coreID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memAssessments) MarkWrapperGraded(ctx context.Context, tx *gorm.DB, id uint) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	w, ok := m.r.wrappers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.Graded = true
	m.r.wrappers[id] = w
	return nil
}

// ===== SUBMISSIONS =====

type memSubmissions struct{ r *memRepo }

func (m memSubmissions) Create(ctx context.Context, tx *gorm.DB, s *models.Submission) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if s.ID == 0 {
		s.ID = m.r.id()
	}
	m.r.submissions[s.ID] = *s
	return nil
}

func (m memSubmissions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	s, ok := m.r.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (m memSubmissions) List(ctx context.Context, tx *gorm.DB, f repositories.SubmissionFilters) ([]models.Submission, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	var out []models.Submission
	for _, s := range m.r.submissions {
		if f.WrapperID != nil && s.WrapperID != *f.WrapperID {
			continue
		}
		if f.CoreID != nil && s.CoreID != *f.CoreID {
			continue
		}
		if f.Graded != nil && s.Graded != *f.Graded {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memSubmissions) SaveMeta(ctx context.Context, tx *gorm.DB, id uint, meta models.SubmissionMeta, gradedAt time.Time) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	s, ok := m.r.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Meta = datatypes.NewJSONType(meta)
	s.Graded = true
	s.GradedAt = &gradedAt
	m.r.submissions[id] = s
	return nil
}

// ===== ANALYSES =====

type memAnalyses struct{ r *memRepo }

func (m memAnalyses) GetWrapperAnalysis(ctx context.Context, tx *gorm.DB, wrapperID uint) (*models.WrapperAnalysis, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	a, ok := m.r.wrapperAnalyses[wrapperID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m memAnalyses) SaveWrapperAnalysis(ctx context.Context, tx *gorm.DB, a *models.WrapperAnalysis) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if m.r.conflicts > 0 {
		m.r.conflicts--
		return repositories.ErrVersionConflict
	}
	existing, ok := m.r.wrapperAnalyses[a.WrapperID]
	if a.ID == 0 {
		if ok {
			return repositories.ErrVersionConflict
		}
		a.ID = m.r.id()
		a.Version = 1
	} else {
		if !ok || existing.Version != a.Version {
			return repositories.ErrVersionConflict
		}
		a.Version++
	}
	m.r.wrapperAnalyses[a.WrapperID] = *a
	return nil
}

func (m memAnalyses) GetCoreAnalysis(ctx context.Context, tx *gorm.DB, coreID uint) (*models.CoreAnalysis, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	a, ok := m.r.coreAnalyses[coreID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m memAnalyses) SaveCoreAnalysis(ctx context.Context, tx *gorm.DB, a *models.CoreAnalysis) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	if m.r.conflicts > 0 {
		m.r.conflicts--
		return repositories.ErrVersionConflict
	}
	existing, ok := m.r.coreAnalyses[a.CoreID]
	if a.ID == 0 {
		if ok {
			return repositories.ErrVersionConflict
		}
		a.ID = m.r.id()
		a.Version = 1
	} else {
		if !ok || existing.Version != a.Version {
			return repositories.ErrVersionConflict
		}
		a.Version++
	}
	m.r.coreAnalyses[a.CoreID] = *a
	return nil
}

// ===== TOPICS =====

type memTopics struct{ r *memRepo }

func (m memTopics) GetSubTopic(ctx context.Context, tx *gorm.DB, id string) (*models.SubTopic, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	st, ok := m.r.subTopics[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &st, nil
}

func (m memTopics) Upsert(ctx context.Context, tx *gorm.DB, st *models.SubTopic) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	m.r.subTopics[st.ID] = *st
	return nil
}

func statKey(userID uint, subTopic string) string {
	return fmt.Sprintf("%d/%s", userID, subTopic)
}

func (m memTopics) GetOrCreate(ctx context.Context, tx *gorm.DB, userID uint, subTopic string) (*models.UserConceptStat, error) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	key := statKey(userID, subTopic)
	s, ok := m.r.userStats[key]
	if !ok {
		s = models.UserConceptStat{ID: m.r.id(), UserID: userID, SubTopicID: subTopic}
		m.r.userStats[key] = s
	}
	return &s, nil
}

func (m memTopics) RecordAnswer(ctx context.Context, tx *gorm.DB, userID uint, subTopic, concept string, correct bool) error {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()
	key := statKey(userID, subTopic)
	s := m.r.userStats[key]
	s.UserID, s.SubTopicID = userID, subTopic

	progress := make(map[string]models.ConceptProgress)
	for k, v := range s.Concepts.Data() {
		progress[k] = v
	}
	p := progress[concept]
	p.Answered++
	if correct {
		p.Correct++
	}
	progress[concept] = p
	s.Concepts = datatypes.NewJSONType(progress)
	s.LastConcept = concept
	m.r.userStats[key] = s
	return nil
}
