package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/fieldstack/progsync/internal/domain/errors"
	"github.com/fieldstack/progsync/internal/domain/program"
)

// EntityRepository implements ports.EntityStore on the hierarchy tables.
type EntityRepository struct {
	conn *Connection
}

// NewEntityRepository creates a new entity repository.
func NewEntityRepository(conn *Connection) *EntityRepository {
	return &EntityRepository{conn: conn}
}

// entityTable maps each entity kind to its table and parent FK column.
// Roots (module, goal) have no parent column.
var entityTable = map[program.EntityType]struct {
	table        string
	parentColumn string
}{
	program.EntityModule:         {"modules", ""},
	program.EntitySubProgram:     {"sub_programs", "module_id"},
	program.EntityComponent:      {"components", "sub_program_id"},
	program.EntityActivity:       {"activities", "component_id"},
	program.EntitySubActivity:    {"sub_activities", "activity_id"},
	program.EntityChecklistBatch: {"checklist_batches", "activity_id"},
	program.EntityGoal:           {"goals", ""},
	program.EntityIndicator:      {"indicators", "goal_id"},
	program.EntityComment:        {"comments", "activity_id"},
	program.EntityTimeEntry:      {"time_entries", "activity_id"},
}

// --- Typed getters ---

func (r *EntityRepository) Module(ctx context.Context, id int64) (*program.Module, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	m := &program.Module{}
	var (
		desc sql.NullString
		nm   nullSyncMeta
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, name, description, remote_id, remote_url, sync_status, last_synced_at
		FROM modules WHERE id = ?`, id).
		Scan(append([]any{&m.ID, &m.Name, &desc}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntityModule, id)
	}
	m.Description = desc.String
	nm.apply(&m.SyncMeta)
	return m, nil
}

func (r *EntityRepository) SubProgram(ctx context.Context, id int64) (*program.SubProgram, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	sp := &program.SubProgram{}
	var (
		desc sql.NullString
		nm   nullSyncMeta
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, module_id, name, description, remote_id, remote_url, sync_status, last_synced_at
		FROM sub_programs WHERE id = ?`, id).
		Scan(append([]any{&sp.ID, &sp.ModuleID, &sp.Name, &desc}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntitySubProgram, id)
	}
	sp.Description = desc.String
	nm.apply(&sp.SyncMeta)
	return sp, nil
}

func (r *EntityRepository) Component(ctx context.Context, id int64) (*program.Component, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	c := &program.Component{}
	var (
		desc sql.NullString
		nm   nullSyncMeta
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, sub_program_id, name, description, remote_id, remote_url, sync_status, last_synced_at
		FROM components WHERE id = ?`, id).
		Scan(append([]any{&c.ID, &c.SubProgramID, &c.Name, &desc}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntityComponent, id)
	}
	c.Description = desc.String
	nm.apply(&c.SyncMeta)
	return c, nil
}

func (r *EntityRepository) Activity(ctx context.Context, id int64) (*program.Activity, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	a := &program.Activity{}
	var (
		desc      sql.NullString
		approval  string
		progress  string
		priority  string
		startDate sql.NullTime
		dueDate   sql.NullTime
		nm        nullSyncMeta
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, component_id, name, description, approval_state, progress_state,
			priority, start_date, due_date,
			remote_id, remote_url, sync_status, last_synced_at
		FROM activities WHERE id = ?`, id).
		Scan(append([]any{
			&a.ID, &a.ComponentID, &a.Name, &desc, &approval, &progress,
			&priority, &startDate, &dueDate,
		}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntityActivity, id)
	}
	a.Description = desc.String
	a.Approval = program.ApprovalState(approval)
	a.Progress = program.ProgressState(progress)
	a.Priority = program.PriorityWord(priority)
	if startDate.Valid {
		t := startDate.Time
		a.StartDate = &t
	}
	if dueDate.Valid {
		t := dueDate.Time
		a.DueDate = &t
	}
	nm.apply(&a.SyncMeta)
	return a, nil
}

func (r *EntityRepository) SubActivity(ctx context.Context, id int64) (*program.SubActivity, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	sa := &program.SubActivity{}
	var (
		progress string
		priority string
		dueDate  sql.NullTime
		nm       nullSyncMeta
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, activity_id, name, progress_state, priority, due_date,
			remote_id, remote_url, sync_status, last_synced_at
		FROM sub_activities WHERE id = ?`, id).
		Scan(append([]any{
			&sa.ID, &sa.ActivityID, &sa.Name, &progress, &priority, &dueDate,
		}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntitySubActivity, id)
	}
	sa.Progress = program.ProgressState(progress)
	sa.Priority = program.PriorityWord(priority)
	if dueDate.Valid {
		t := dueDate.Time
		sa.DueDate = &t
	}
	nm.apply(&sa.SyncMeta)
	return sa, nil
}

func (r *EntityRepository) ChecklistBatch(ctx context.Context, id int64) (*program.ChecklistBatch, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	b := &program.ChecklistBatch{}
	var nm nullSyncMeta
	err = db.QueryRowContext(ctx, `
		SELECT id, activity_id, name, remote_id, remote_url, sync_status, last_synced_at
		FROM checklist_batches WHERE id = ?`, id).
		Scan(append([]any{&b.ID, &b.ActivityID, &b.Name}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntityChecklistBatch, id)
	}
	nm.apply(&b.SyncMeta)

	rows, err := db.QueryContext(ctx, `
		SELECT id, batch_id, name, done, position, remote_id
		FROM checklist_items WHERE batch_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not load checklist items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item     program.ChecklistItem
			remoteID sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.BatchID, &item.Name, &item.Done, &item.Position, &remoteID); err != nil {
			return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not scan checklist item", err)
		}
		item.RemoteID = remoteID.String
		b.Items = append(b.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not iterate checklist items", err)
	}
	return b, nil
}

func (r *EntityRepository) Goal(ctx context.Context, id int64) (*program.Goal, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	g := &program.Goal{}
	var (
		desc    sql.NullString
		color   sql.NullString
		dueDate sql.NullTime
		nm      nullSyncMeta
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, name, description, color, due_date,
			remote_id, remote_url, sync_status, last_synced_at
		FROM goals WHERE id = ?`, id).
		Scan(append([]any{&g.ID, &g.Name, &desc, &color, &dueDate}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntityGoal, id)
	}
	g.Description = desc.String
	g.Color = color.String
	if dueDate.Valid {
		t := dueDate.Time
		g.DueDate = &t
	}
	nm.apply(&g.SyncMeta)
	return g, nil
}

func (r *EntityRepository) Indicator(ctx context.Context, id int64) (*program.Indicator, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	ind := &program.Indicator{}
	var (
		unit sql.NullString
		nm   nullSyncMeta
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, goal_id, name, unit, steps_start, steps_end,
			remote_id, remote_url, sync_status, last_synced_at
		FROM indicators WHERE id = ?`, id).
		Scan(append([]any{
			&ind.ID, &ind.GoalID, &ind.Name, &unit, &ind.StepsStart, &ind.StepsEnd,
		}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntityIndicator, id)
	}
	ind.Unit = unit.String
	nm.apply(&ind.SyncMeta)
	return ind, nil
}

func (r *EntityRepository) Comment(ctx context.Context, id int64) (*program.Comment, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	c := &program.Comment{}
	var (
		author sql.NullString
		nm     nullSyncMeta
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, activity_id, body, author,
			remote_id, remote_url, sync_status, last_synced_at
		FROM comments WHERE id = ?`, id).
		Scan(append([]any{&c.ID, &c.ActivityID, &c.Body, &author}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntityComment, id)
	}
	c.Author = author.String
	nm.apply(&c.SyncMeta)
	return c, nil
}

func (r *EntityRepository) TimeEntry(ctx context.Context, id int64) (*program.TimeEntry, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	te := &program.TimeEntry{}
	var (
		desc       sql.NullString
		durationMS int64
		nm         nullSyncMeta
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, activity_id, description, start_time, duration_ms, billable,
			remote_id, remote_url, sync_status, last_synced_at
		FROM time_entries WHERE id = ?`, id).
		Scan(append([]any{
			&te.ID, &te.ActivityID, &desc, &te.Start, &durationMS, &te.Billable,
		}, nm.dests()...)...)
	if err != nil {
		return nil, notFound(err, program.EntityTimeEntry, id)
	}
	te.Description = desc.String
	te.Duration = time.Duration(durationMS) * time.Millisecond
	nm.apply(&te.SyncMeta)
	return te, nil
}

// --- Remote linkage ---

// RemoteID returns the remote id of any tracked row, with ok=false when
// the row has never synced.
func (r *EntityRepository) RemoteID(ctx context.Context, t program.EntityType, id int64) (string, bool, error) {
	db, err := r.conn.DB()
	if err != nil {
		return "", false, err
	}

	meta, ok := entityTable[t]
	if !ok {
		return "", false, fmt.Errorf("%w: %q", domainErrors.ErrUnknownEntityType, t)
	}

	var remoteID sql.NullString
	err = db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT remote_id FROM %s WHERE id = ?", meta.table), id).
		Scan(&remoteID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("%w: %s %d", domainErrors.ErrEntityNotFound, t, id)
	}
	if err != nil {
		return "", false, domainErrors.NewError(domainErrors.CodeStorage, "could not load remote id", err)
	}
	if !remoteID.Valid || remoteID.String == "" {
		return "", false, nil
	}
	return remoteID.String, true, nil
}

// ParentID returns the local parent key of a tracked row. Roots return
// ok=false.
func (r *EntityRepository) ParentID(ctx context.Context, t program.EntityType, id int64) (int64, bool, error) {
	db, err := r.conn.DB()
	if err != nil {
		return 0, false, err
	}

	meta, ok := entityTable[t]
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", domainErrors.ErrUnknownEntityType, t)
	}
	if meta.parentColumn == "" {
		return 0, false, nil
	}

	var parentID int64
	err = db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", meta.parentColumn, meta.table), id).
		Scan(&parentID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("%w: %s %d", domainErrors.ErrEntityNotFound, t, id)
	}
	if err != nil {
		return 0, false, domainErrors.NewError(domainErrors.CodeStorage, "could not load parent id", err)
	}
	return parentID, true, nil
}

// MarkSynced stores the remote linkage and flips sync_status to synced.
func (r *EntityRepository) MarkSynced(ctx context.Context, t program.EntityType, id int64, remoteID, remoteURL string) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	meta, ok := entityTable[t]
	if !ok {
		return fmt.Errorf("%w: %q", domainErrors.ErrUnknownEntityType, t)
	}

	res, err := db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET remote_id = ?, remote_url = ?, sync_status = ?, last_synced_at = ? WHERE id = ?`, meta.table),
		remoteID, remoteURL, string(program.SyncSynced), time.Now().UTC(), id)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not mark entity synced", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not check affected rows", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s %d", domainErrors.ErrEntityNotFound, t, id)
	}
	return nil
}

// MarkItemSynced stores the remote id on one checklist item.
func (r *EntityRepository) MarkItemSynced(ctx context.Context, itemID int64, remoteID string) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE checklist_items SET remote_id = ? WHERE id = ?`, remoteID, itemID)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not mark checklist item synced", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not check affected rows", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: checklist item %d", domainErrors.ErrEntityNotFound, itemID)
	}
	return nil
}

// --- Pull sweep queries ---

// SyncedModules returns every module with a remote counterpart.
func (r *EntityRepository) SyncedModules(ctx context.Context) ([]*program.Module, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, name, description, remote_id, remote_url, sync_status, last_synced_at
		FROM modules WHERE remote_id IS NOT NULL AND remote_id != '' ORDER BY id ASC`)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not list synced modules", err)
	}
	defer rows.Close()

	var modules []*program.Module
	for rows.Next() {
		m := &program.Module{}
		var (
			desc sql.NullString
			nm   nullSyncMeta
		)
		if err := rows.Scan(append([]any{&m.ID, &m.Name, &desc}, nm.dests()...)...); err != nil {
			return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not scan module", err)
		}
		m.Description = desc.String
		nm.apply(&m.SyncMeta)
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// SyncedComponents returns every component with a remote counterpart.
func (r *EntityRepository) SyncedComponents(ctx context.Context) ([]*program.Component, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, sub_program_id, name, description, remote_id, remote_url, sync_status, last_synced_at
		FROM components WHERE remote_id IS NOT NULL AND remote_id != '' ORDER BY id ASC`)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not list synced components", err)
	}
	defer rows.Close()

	var components []*program.Component
	for rows.Next() {
		c := &program.Component{}
		var (
			desc sql.NullString
			nm   nullSyncMeta
		)
		if err := rows.Scan(append([]any{&c.ID, &c.SubProgramID, &c.Name, &desc}, nm.dests()...)...); err != nil {
			return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not scan component", err)
		}
		c.Description = desc.String
		nm.apply(&c.SyncMeta)
		components = append(components, c)
	}
	return components, rows.Err()
}

// SyncedActivities returns every activity with a remote counterpart.
func (r *EntityRepository) SyncedActivities(ctx context.Context) ([]*program.Activity, error) {
	db, err := r.conn.DB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id FROM activities WHERE remote_id IS NOT NULL AND remote_id != '' ORDER BY id ASC`)
	if err != nil {
		return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not list synced activities", err)
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, domainErrors.NewError(domainErrors.CodeStorage, "could not scan activity id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	activities := make([]*program.Activity, 0, len(ids))
	for _, id := range ids {
		a, err := r.Activity(ctx, id)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, nil
}

// --- Seeding helpers ---

func (r *EntityRepository) CreateModule(ctx context.Context, m *program.Module) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO modules (name, description) VALUES (?, ?)`, m.Name, m.Description)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create module", err)
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (r *EntityRepository) CreateSubProgram(ctx context.Context, sp *program.SubProgram) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO sub_programs (module_id, name, description) VALUES (?, ?, ?)`,
		sp.ModuleID, sp.Name, sp.Description)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create sub-program", err)
	}
	sp.ID, err = res.LastInsertId()
	return err
}

func (r *EntityRepository) CreateComponent(ctx context.Context, c *program.Component) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO components (sub_program_id, name, description) VALUES (?, ?, ?)`,
		c.SubProgramID, c.Name, c.Description)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create component", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *EntityRepository) CreateActivity(ctx context.Context, a *program.Activity) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	if a.Approval == "" {
		a.Approval = program.ApprovalDraft
	}
	if a.Progress == "" {
		a.Progress = program.ProgressPlanned
	}
	if a.Priority == "" {
		a.Priority = program.PriorityNormal
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO activities (component_id, name, description, approval_state,
			progress_state, priority, start_date, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ComponentID, a.Name, a.Description, string(a.Approval),
		string(a.Progress), string(a.Priority), a.StartDate, a.DueDate)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create activity", err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (r *EntityRepository) CreateSubActivity(ctx context.Context, sa *program.SubActivity) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	if sa.Progress == "" {
		sa.Progress = program.ProgressPlanned
	}
	if sa.Priority == "" {
		sa.Priority = program.PriorityNormal
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO sub_activities (activity_id, name, progress_state, priority, due_date)
		VALUES (?, ?, ?, ?, ?)`,
		sa.ActivityID, sa.Name, string(sa.Progress), string(sa.Priority), sa.DueDate)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create sub-activity", err)
	}
	sa.ID, err = res.LastInsertId()
	return err
}

func (r *EntityRepository) CreateChecklistBatch(ctx context.Context, b *program.ChecklistBatch) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO checklist_batches (activity_id, name) VALUES (?, ?)`,
		b.ActivityID, b.Name)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create checklist batch", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	for i := range b.Items {
		item := &b.Items[i]
		item.BatchID = b.ID
		itemRes, err := db.ExecContext(ctx,
			`INSERT INTO checklist_items (batch_id, name, done, position) VALUES (?, ?, ?, ?)`,
			item.BatchID, item.Name, item.Done, item.Position)
		if err != nil {
			return domainErrors.NewError(domainErrors.CodeStorage, "could not create checklist item", err)
		}
		item.ID, err = itemRes.LastInsertId()
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *EntityRepository) CreateGoal(ctx context.Context, g *program.Goal) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO goals (name, description, color, due_date) VALUES (?, ?, ?, ?)`,
		g.Name, g.Description, g.Color, g.DueDate)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create goal", err)
	}
	g.ID, err = res.LastInsertId()
	return err
}

func (r *EntityRepository) CreateIndicator(ctx context.Context, ind *program.Indicator) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO indicators (goal_id, name, unit, steps_start, steps_end)
		VALUES (?, ?, ?, ?, ?)`,
		ind.GoalID, ind.Name, ind.Unit, ind.StepsStart, ind.StepsEnd)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create indicator", err)
	}
	ind.ID, err = res.LastInsertId()
	return err
}

func (r *EntityRepository) CreateComment(ctx context.Context, c *program.Comment) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO comments (activity_id, body, author) VALUES (?, ?, ?)`,
		c.ActivityID, c.Body, c.Author)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create comment", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *EntityRepository) CreateTimeEntry(ctx context.Context, te *program.TimeEntry) error {
	db, err := r.conn.DB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO time_entries (activity_id, description, start_time, duration_ms, billable)
		VALUES (?, ?, ?, ?, ?)`,
		te.ActivityID, te.Description, te.Start, te.Duration.Milliseconds(), te.Billable)
	if err != nil {
		return domainErrors.NewError(domainErrors.CodeStorage, "could not create time entry", err)
	}
	te.ID, err = res.LastInsertId()
	return err
}

// --- Scan helpers ---

// nullSyncMeta collects the nullable remote linkage columns before they
// are copied into a SyncMeta.
type nullSyncMeta struct {
	remoteID     sql.NullString
	remoteURL    sql.NullString
	syncStatus   string
	lastSyncedAt sql.NullTime
}

// dests returns scan destinations for remote_id, remote_url,
// sync_status, last_synced_at, in that column order.
func (n *nullSyncMeta) dests() []any {
	return []any{&n.remoteID, &n.remoteURL, &n.syncStatus, &n.lastSyncedAt}
}

// apply copies the scanned values into meta.
func (n *nullSyncMeta) apply(meta *program.SyncMeta) {
	meta.RemoteID = n.remoteID.String
	meta.RemoteURL = n.remoteURL.String
	meta.SyncStatus = program.SyncStatus(n.syncStatus)
	if n.lastSyncedAt.Valid {
		t := n.lastSyncedAt.Time
		meta.LastSyncedAt = &t
	}
}

func notFound(err error, t program.EntityType, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s %d", domainErrors.ErrEntityNotFound, t, id)
	}
	return domainErrors.NewError(domainErrors.CodeStorage, fmt.Sprintf("could not load %s", t), err)
}
