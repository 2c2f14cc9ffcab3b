package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"tokebook/internal/model"
	"tokebook/internal/repository"
	pkgerrors "tokebook/pkg/errors"
)

// ── 内存存储 ──
// 所有 mock 共享同一份数据，读写一律拷贝，
// 唯一约束、版本号与状态条件与 GORM 实现保持一致

type memStore struct {
	mu           sync.Mutex
	casinos      map[string]model.Casino
	users        map[string]model.User
	periods      map[string]model.TokePeriod
	signOffs     map[string]model.TokeSignOff
	earlyOuts    map[string]model.EarlyOutRequest
	vacations    map[string]model.DealerVacation
	discrepancy  map[string]model.Discrepancy
	auditLogs    []model.AuditLog
	clock        time.Time
	createdOrder int
}

func newMemStore() *memStore {
	return &memStore{
		casinos:     make(map[string]model.Casino),
		users:       make(map[string]model.User),
		periods:     make(map[string]model.TokePeriod),
		signOffs:    make(map[string]model.TokeSignOff),
		earlyOuts:   make(map[string]model.EarlyOutRequest),
		vacations:   make(map[string]model.DealerVacation),
		discrepancy: make(map[string]model.Discrepancy),
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick 单调递增的创建时间，保证排序稳定
func (s *memStore) tick() time.Time {
	s.createdOrder++
	return s.clock.Add(time.Duration(s.createdOrder) * time.Second)
}

// repository 组装不绑定数据库的聚合，Transaction 直接执行回调
func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Casino:      &mockCasinoRepo{s},
		User:        &mockUserRepo{s},
		TokePeriod:  &mockTokePeriodRepo{s},
		SignOff:     &mockSignOffRepo{s},
		EarlyOut:    &mockEarlyOutRepo{s},
		Vacation:    &mockVacationRepo{s},
		Discrepancy: &mockDiscrepancyRepo{s},
		AuditLog:    &mockAuditLogRepo{s},
	}
}

func (s *memStore) userPtr(id string) *model.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &u
}

// ── Mock CasinoRepository ──

type mockCasinoRepo struct{ s *memStore }

func (m *mockCasinoRepo) Create(_ context.Context, casino *model.Casino) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.casinos {
		if c.Name == casino.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	_ = casino.BeforeCreate(nil)
	casino.CreatedAt = m.s.tick()
	m.s.casinos[casino.CasinoID] = *casino
	return nil
}

func (m *mockCasinoRepo) GetByID(_ context.Context, id string) (*model.Casino, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	c, ok := m.s.casinos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (m *mockCasinoRepo) List(_ context.Context) ([]model.Casino, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	list := make([]model.Casino, 0, len(m.s.casinos))
	for _, c := range m.s.casinos {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (m *mockCasinoRepo) Update(_ context.Context, casino *model.Casino) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, c := range m.s.casinos {
		if id != casino.CasinoID && c.Name == casino.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, ok := m.s.casinos[casino.CasinoID]; ok {
		m.s.casinos[casino.CasinoID] = *casino
	}
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *memStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.EmployeeID == user.EmployeeID {
			return gorm.ErrDuplicatedKey
		}
	}
	_ = user.BeforeCreate(nil)
	user.ApplyRoleInvariants()
	if user.Version == 0 {
		user.Version = 1
	}
	user.CreatedAt = m.s.tick()
	m.s.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if u := m.s.userPtr(id); u != nil {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.EmployeeID == employeeID {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByPencilID(_ context.Context, pencilID string) (*model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.PencilID != nil && *u.PencilID == pencilID {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.users[user.UserID]
	if !ok || stored.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.ApplyRoleInvariants()
	user.Version++
	m.s.users[user.UserID] = *user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.User
	for _, u := range m.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.CasinoID != "" && (u.CasinoID == nil || *u.CasinoID != filter.CasinoID) {
			continue
		}
		if !filter.IncludeArchived && !u.IsActive {
			continue
		}
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].FirstName < list[j].FirstName })
	total := int64(len(list))
	if filter.Limit > 0 {
		list = page(list, filter.Offset, filter.Limit)
	}
	return list, total, nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.User
	for _, id := range ids {
		if u, ok := m.s.users[id]; ok {
			list = append(list, u)
		}
	}
	return list, nil
}

// ── Mock TokePeriodRepository ──

type mockTokePeriodRepo struct{ s *memStore }

func (m *mockTokePeriodRepo) Create(_ context.Context, period *model.TokePeriod) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.periods {
		if p.CasinoID == period.CasinoID && p.PeriodDate.Equal(model.DateOf(period.PeriodDate)) {
			return gorm.ErrDuplicatedKey
		}
	}
	_ = period.BeforeCreate(nil)
	period.PeriodDate = model.DateOf(period.PeriodDate)
	if period.Version == 0 {
		period.Version = 1
	}
	period.CreatedAt = m.s.tick()
	m.s.periods[period.TokePeriodID] = *period
	return nil
}

func (m *mockTokePeriodRepo) GetByID(_ context.Context, id string) (*model.TokePeriod, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	p, ok := m.s.periods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (m *mockTokePeriodRepo) GetLocked(ctx context.Context, id string, _ string) (*model.TokePeriod, error) {
	return m.GetByID(ctx, id)
}

func (m *mockTokePeriodRepo) GetByCasinoDate(_ context.Context, casinoID string, date time.Time) (*model.TokePeriod, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.periods {
		if p.CasinoID == casinoID && p.PeriodDate.Equal(model.DateOf(date)) {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTokePeriodRepo) List(_ context.Context, casinoID string, offset, limit int) ([]model.TokePeriod, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.TokePeriod
	for _, p := range m.s.periods {
		if p.CasinoID == casinoID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PeriodDate.After(list[j].PeriodDate) })
	return page(list, offset, limit), int64(len(list)), nil
}

func (m *mockTokePeriodRepo) UpdatePool(_ context.Context, period *model.TokePeriod) error {
	return m.versioned(period, func(stored *model.TokePeriod) {
		stored.PoolAmount = period.PoolAmount
		stored.UpdatedBy = period.UpdatedBy
	})
}

func (m *mockTokePeriodRepo) MarkFinalized(_ context.Context, period *model.TokePeriod) error {
	return m.versioned(period, func(stored *model.TokePeriod) {
		stored.PerHourRate = period.PerHourRate
		stored.Finalized = true
		stored.FinalizedBy = period.FinalizedBy
		stored.FinalizedAt = period.FinalizedAt
		stored.UpdatedBy = period.UpdatedBy
	})
}

func (m *mockTokePeriodRepo) versioned(period *model.TokePeriod, apply func(*model.TokePeriod)) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.periods[period.TokePeriodID]
	if !ok || stored.Version != period.Version || stored.Finalized {
		return pkgerrors.ErrOptimisticLock
	}
	apply(&stored)
	stored.Version++
	period.Version = stored.Version
	m.s.periods[period.TokePeriodID] = stored
	return nil
}

// ── Mock SignOffRepository ──

type mockSignOffRepo struct{ s *memStore }

func (m *mockSignOffRepo) Create(_ context.Context, signOff *model.TokeSignOff) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, so := range m.s.signOffs {
		if so.UserID == signOff.UserID && so.TokePeriodID == signOff.TokePeriodID {
			return gorm.ErrDuplicatedKey
		}
	}
	_ = signOff.BeforeCreate(nil)
	if signOff.Version == 0 {
		signOff.Version = 1
	}
	signOff.CreatedAt = m.s.tick()
	stored := *signOff
	stored.User = nil
	m.s.signOffs[signOff.SignOffID] = stored
	return nil
}

func (m *mockSignOffRepo) GetByID(_ context.Context, id string) (*model.TokeSignOff, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	so, ok := m.s.signOffs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &so, nil
}

func (m *mockSignOffRepo) GetByUserPeriod(_ context.Context, userID, periodID string) (*model.TokeSignOff, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, so := range m.s.signOffs {
		if so.UserID == userID && so.TokePeriodID == periodID {
			return &so, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSignOffRepo) ListByPeriod(_ context.Context, periodID string) ([]model.TokeSignOff, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	list := m.byPeriod(periodID)
	for i := range list {
		list[i].User = m.s.userPtr(list[i].UserID)
	}
	return list, nil
}

func (m *mockSignOffRepo) ListByPeriodForUpdate(_ context.Context, periodID string) ([]model.TokeSignOff, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.byPeriod(periodID), nil
}

func (m *mockSignOffRepo) byPeriod(periodID string) []model.TokeSignOff {
	var list []model.TokeSignOff
	for _, so := range m.s.signOffs {
		if so.TokePeriodID == periodID {
			list = append(list, so)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list
}

func (m *mockSignOffRepo) GetLatestByUser(_ context.Context, userID string) (*model.TokeSignOff, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var latest *model.TokeSignOff
	for _, so := range m.s.signOffs {
		if so.UserID != userID {
			continue
		}
		if latest == nil || so.ShiftDate.After(latest.ShiftDate) {
			so := so
			latest = &so
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (m *mockSignOffRepo) UpdateActualHours(_ context.Context, signOff *model.TokeSignOff) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.signOffs[signOff.SignOffID]
	if !ok || stored.Version != signOff.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.ActualHours = signOff.ActualHours
	stored.UpdatedBy = signOff.UpdatedBy
	stored.Version++
	signOff.Version = stored.Version
	m.s.signOffs[signOff.SignOffID] = stored
	return nil
}

func (m *mockSignOffRepo) FreezeTokeHours(_ context.Context, periodID string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for id, so := range m.s.signOffs {
		if so.TokePeriodID != periodID {
			continue
		}
		so.TokeHours = so.ActualHours
		so.Version++
		m.s.signOffs[id] = so
		n++
	}
	return n, nil
}

// ── Mock EarlyOutRepository ──

type mockEarlyOutRepo struct{ s *memStore }

func (m *mockEarlyOutRepo) Create(_ context.Context, req *model.EarlyOutRequest) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if req.ActiveDate != nil {
		for _, e := range m.s.earlyOuts {
			if e.UserID == req.UserID && e.ActiveDate != nil && e.ActiveDate.Equal(*req.ActiveDate) {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	_ = req.BeforeCreate(nil)
	if req.Version == 0 {
		req.Version = 1
	}
	req.CreatedAt = m.s.tick()
	stored := *req
	stored.User = nil
	m.s.earlyOuts[req.EarlyOutID] = stored
	return nil
}

func (m *mockEarlyOutRepo) GetByID(_ context.Context, id string) (*model.EarlyOutRequest, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	e, ok := m.s.earlyOuts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	e.User = m.s.userPtr(e.UserID)
	return &e, nil
}

func (m *mockEarlyOutRepo) GetActiveByUserDate(_ context.Context, userID string, date time.Time) (*model.EarlyOutRequest, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, e := range m.s.earlyOuts {
		if e.UserID == userID && e.ActiveDate != nil && e.ActiveDate.Equal(model.DateOf(date)) {
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEarlyOutRepo) List(_ context.Context, filter repository.EarlyOutFilter) ([]model.EarlyOutRequest, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.EarlyOutRequest
	for _, e := range m.s.earlyOuts {
		if !e.RequestDate.Equal(model.DateOf(filter.Date)) {
			continue
		}
		u := m.s.userPtr(e.UserID)
		if u == nil {
			continue
		}
		if filter.CasinoID != "" && (u.CasinoID == nil || *u.CasinoID != filter.CasinoID) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if len(filter.Statuses) > 0 && !hasStatus(filter.Statuses, e.Status) {
			continue
		}
		e.User = u
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	return list, nil
}

func (m *mockEarlyOutRepo) UpdateStatus(_ context.Context, req *model.EarlyOutRequest, fromStatus model.EarlyOutStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.earlyOuts[req.EarlyOutID]
	if !ok || stored.Version != req.Version || stored.Status != fromStatus {
		return pkgerrors.ErrOptimisticLock
	}
	if req.ActiveDate != nil {
		for id, e := range m.s.earlyOuts {
			if id != req.EarlyOutID && e.UserID == req.UserID && e.ActiveDate != nil && e.ActiveDate.Equal(*req.ActiveDate) {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	stored.Status = req.Status
	stored.ActiveDate = req.ActiveDate
	stored.SignOffID = req.SignOffID
	stored.AuthorizedBy = req.AuthorizedBy
	stored.HoursWorked = req.HoursWorked
	stored.ProcessedAt = req.ProcessedAt
	stored.UpdatedBy = req.UpdatedBy
	stored.Version++
	req.Version = stored.Version
	m.s.earlyOuts[req.EarlyOutID] = stored
	return nil
}

func hasStatus(list []model.EarlyOutStatus, s model.EarlyOutStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ── Mock VacationRepository ──

type mockVacationRepo struct{ s *memStore }

func (m *mockVacationRepo) Create(_ context.Context, v *model.DealerVacation) error {
	if err := v.BeforeSave(nil); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_ = v.BeforeCreate(nil)
	if v.Version == 0 {
		v.Version = 1
	}
	v.CreatedAt = m.s.tick()
	stored := *v
	stored.User = nil
	m.s.vacations[v.VacationID] = stored
	return nil
}

func (m *mockVacationRepo) GetByID(_ context.Context, id string) (*model.DealerVacation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	v, ok := m.s.vacations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v.User = m.s.userPtr(v.UserID)
	return &v, nil
}

func (m *mockVacationRepo) List(_ context.Context, filter repository.VacationFilter) ([]model.DealerVacation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.DealerVacation
	for _, v := range m.s.vacations {
		u := m.s.userPtr(v.UserID)
		if filter.CasinoID != "" && (u == nil || u.CasinoID == nil || *u.CasinoID != filter.CasinoID) {
			continue
		}
		if filter.UserID != "" && v.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && v.EndDate.Before(model.DateOf(filter.From)) {
			continue
		}
		if !filter.To.IsZero() && v.StartDate.After(model.DateOf(filter.To)) {
			continue
		}
		v.User = u
		list = append(list, v)
	}
	sortVacations(list)
	return list, nil
}

func (m *mockVacationRepo) ListByStartRange(_ context.Context, from, to time.Time, status model.VacationStatus) ([]model.DealerVacation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.DealerVacation
	for _, v := range m.s.vacations {
		if v.StartDate.Before(model.DateOf(from)) || !v.StartDate.Before(model.DateOf(to)) {
			continue
		}
		if status != "" && v.Status != status {
			continue
		}
		v.User = m.s.userPtr(v.UserID)
		list = append(list, v)
	}
	sortVacations(list)
	return list, nil
}

func (m *mockVacationRepo) UpdateStatus(_ context.Context, v *model.DealerVacation, fromStatus model.VacationStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.vacations[v.VacationID]
	if !ok || stored.Version != v.Version || stored.Status != fromStatus {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = v.Status
	stored.ApprovedBy = v.ApprovedBy
	stored.ApprovedAt = v.ApprovedAt
	stored.UpdatedBy = v.UpdatedBy
	stored.Version++
	v.Version = stored.Version
	m.s.vacations[v.VacationID] = stored
	return nil
}

func sortVacations(list []model.DealerVacation) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartDate.Equal(list[j].StartDate) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].StartDate.Before(list[j].StartDate)
	})
}

// ── Mock DiscrepancyRepository ──

type mockDiscrepancyRepo struct{ s *memStore }

func (m *mockDiscrepancyRepo) Create(_ context.Context, d *model.Discrepancy) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_ = d.BeforeCreate(nil)
	if d.Version == 0 {
		d.Version = 1
	}
	d.CreatedAt = m.s.tick()
	m.s.discrepancy[d.DiscrepancyID] = *d
	return nil
}

func (m *mockDiscrepancyRepo) GetByID(_ context.Context, id string) (*model.Discrepancy, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d, ok := m.s.discrepancy[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (m *mockDiscrepancyRepo) List(_ context.Context, filter repository.DiscrepancyFilter, offset, limit int) ([]model.Discrepancy, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.Discrepancy
	for _, d := range m.s.discrepancy {
		if filter.CasinoID != "" && d.CasinoID != filter.CasinoID {
			continue
		}
		if filter.Status == "" || d.Status == filter.Status {
			list = append(list, d)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return page(list, offset, limit), int64(len(list)), nil
}

func (m *mockDiscrepancyRepo) UpdateStatus(_ context.Context, d *model.Discrepancy, fromStatus model.DiscrepancyStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	stored, ok := m.s.discrepancy[d.DiscrepancyID]
	if !ok || stored.Version != d.Version || stored.Status != fromStatus {
		return pkgerrors.ErrOptimisticLock
	}
	d.Version = stored.Version + 1
	m.s.discrepancy[d.DiscrepancyID] = *d
	return nil
}

// ── Mock AuditLogRepository ──

type mockAuditLogRepo struct{ s *memStore }

func (m *mockAuditLogRepo) Create(_ context.Context, entry *model.AuditLog) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_ = entry.BeforeCreate(nil)
	entry.CreatedAt = m.s.tick()
	m.s.auditLogs = append(m.s.auditLogs, *entry)
	return nil
}

func (m *mockAuditLogRepo) List(_ context.Context, filter repository.AuditLogFilter) ([]model.AuditLog, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var list []model.AuditLog
	for i := len(m.s.auditLogs) - 1; i >= 0; i-- {
		e := m.s.auditLogs[i]
		if filter.UserID != "" && (e.UserID == nil || *e.UserID != filter.UserID) {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.ModelName != "" && e.ModelName != filter.ModelName {
			continue
		}
		if filter.RecordID != "" && e.RecordID != filter.RecordID {
			continue
		}
		list = append(list, e)
	}
	return page(list, filter.Offset, filter.Limit), int64(len(list)), nil
}

func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}
