package endpoints

import (
	"sort"
	"sync"
	"time"

	"warehouse-in-go/pkg/model"
	"warehouse-in-go/pkg/server/store"
)

// In-memory stores for handler tests. They live in a non-test file so the
// compiler keeps the interface assertions honest even outside test builds.

type memProjects struct {
	mu         sync.Mutex
	projects   map[string]*model.Project // by normalized name
	roles      map[string]map[string]string
	prohibited map[string]*model.ProhibitedProjectName
}

var _ store.ProjectsStore = (*memProjects)(nil)

func newMemProjects() *memProjects {
	return &memProjects{
		projects:   map[string]*model.Project{},
		roles:      map[string]map[string]string{},
		prohibited: map[string]*model.ProhibitedProjectName{},
	}
}

func (m *memProjects) FindProject(normalizedName string) (*model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.projects[normalizedName]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, store.ErrProjectNotFound
}

func (m *memProjects) CreateProject(project *model.Project, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prohibited[project.NormalizedName] != nil {
		return store.ErrProjectProhibited
	}
	copied := *project
	m.projects[project.NormalizedName] = &copied
	m.roles[project.ID] = map[string]string{ownerID: "owner"}
	return nil
}

func (m *memProjects) ListProjectNames(limit int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []string
	for name, p := range m.projects {
		if !p.InQuarantine() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (m *memProjects) HasRole(projectID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.roles[projectID][userID]
	return ok, nil
}

func (m *memProjects) GrantRole(projectID, userID, roleName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roles[projectID] == nil {
		m.roles[projectID] = map[string]string{}
	}
	m.roles[projectID][userID] = roleName
	return nil
}

func (m *memProjects) SetLifecycleStatus(projectID string, status *string, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.ID == projectID {
			now := time.Now()
			p.LifecycleStatus = status
			p.StatusChangedAt = &now
			p.StatusNote = &note
			return nil
		}
	}
	return store.ErrProjectNotFound
}

func (m *memProjects) ListQuarantined() ([]model.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Project
	for _, p := range m.projects {
		if p.InQuarantine() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NormalizedName < out[j].NormalizedName })
	return out, nil
}

func (m *memProjects) AddTotalSize(projectID string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.ID == projectID {
			p.TotalSize += delta
			return nil
		}
	}
	return store.ErrProjectNotFound
}

func (m *memProjects) Prohibit(name, prohibitedBy, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prohibited[name] = &model.ProhibitedProjectName{
		Name:         name,
		ProhibitedBy: prohibitedBy,
		Comment:      comment,
		CreatedAt:    time.Now(),
	}
	return nil
}

func (m *memProjects) IsProhibited(normalizedName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.prohibited[normalizedName]
	return ok, nil
}

func (m *memProjects) ListProhibited() ([]model.ProhibitedProjectName, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var names []model.ProhibitedProjectName
	for _, p := range m.prohibited {
		names = append(names, *p)
	}
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })
	return names, nil
}

type memReleases struct {
	mu          sync.Mutex
	releases    []*model.Release
	classifiers map[string][]string
}

var _ store.ReleasesStore = (*memReleases)(nil)

func newMemReleases() *memReleases {
	return &memReleases{classifiers: map[string][]string{}}
}

func (m *memReleases) FindRelease(projectID, canonicalVersion string) (*model.Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.releases {
		if r.ProjectID == projectID && r.CanonicalVersion == canonicalVersion {
			copied := *r
			return &copied, nil
		}
	}
	return nil, store.ErrReleaseNotFound
}

func (m *memReleases) CreateRelease(release *model.Release, classifiers []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *release
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	m.releases = append(m.releases, &copied)
	sorted := append([]string(nil), classifiers...)
	sort.Strings(sorted)
	m.classifiers[release.ID] = sorted
	return nil
}

func (m *memReleases) ListReleases(projectID string) ([]model.Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Release
	for _, r := range m.releases {
		if r.ProjectID == projectID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memReleases) ListClassifiers(releaseID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.classifiers[releaseID]...), nil
}

func (m *memReleases) SetYanked(releaseID string, yanked bool, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.releases {
		if r.ID == releaseID {
			r.Yanked = yanked
			r.YankedReason = reason
			return nil
		}
	}
	return store.ErrReleaseNotFound
}

type memFiles struct {
	mu      sync.Mutex
	files   []*model.File
	journal map[string]bool
}

var _ store.FilesStore = (*memFiles)(nil)

func newMemFiles() *memFiles {
	return &memFiles{journal: map[string]bool{}}
}

func (m *memFiles) FindFile(filename string) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.Filename == filename {
			copied := *f
			return &copied, nil
		}
	}
	return nil, store.ErrFileNotFound
}

func (m *memFiles) ExistsWithDigests(md5, sha256, blake2 string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.MD5Digest == md5 || f.SHA256Digest == sha256 || f.Blake2Digest == blake2 {
			return true, nil
		}
	}
	return false, nil
}

func (m *memFiles) FilenameInJournal(filename string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.journal[filename], nil
}

func (m *memFiles) CreateFile(file *model.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.journal[file.Filename] {
		return store.ErrFilenameTaken
	}
	m.journal[file.Filename] = true
	copied := *file
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	m.files = append(m.files, &copied)
	return nil
}

func (m *memFiles) ListFiles(releaseID string) ([]model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.File
	for _, f := range m.files {
		if f.ReleaseID == releaseID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func (m *memFiles) ListProjectFiles(projectID string) ([]model.File, error) {
	// The fake has no release->project join; tests go through ListFiles.
	return nil, nil
}

type memUsers struct {
	mu     sync.Mutex
	users  map[string]*model.User
	tokens map[string]*model.APIToken
}

var _ store.UsersStore = (*memUsers)(nil)

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*model.User{}, tokens: map[string]*model.APIToken{}}
}

func (m *memUsers) FindUser(username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *memUsers) FindUserByID(id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, store.ErrUserNotFound
}

func (m *memUsers) CreateUser(user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memUsers) SetFrozen(userID string, frozen bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[userID]; ok {
		u.IsFrozen = frozen
		return nil
	}
	return store.ErrUserNotFound
}

func (m *memUsers) FindToken(tokenID string) (*model.APIToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[tokenID]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, store.ErrTokenNotFound
}

func (m *memUsers) CreateToken(token *model.APIToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *token
	m.tokens[token.ID] = &copied
	return nil
}

func (m *memUsers) TouchToken(tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[tokenID]; ok {
		now := time.Now()
		t.LastUsedAt = &now
	}
	return nil
}

type memObservations struct {
	mu           sync.Mutex
	observations []*model.Observation
}

var _ store.ObservationsStore = (*memObservations)(nil)

func newMemObservations() *memObservations {
	return &memObservations{}
}

func (m *memObservations) CreateObservation(obs *model.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *obs
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	m.observations = append(m.observations, &copied)
	return nil
}

func (m *memObservations) ListObservations(projectID string) ([]model.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Observation
	for _, o := range m.observations {
		if o.ProjectID == projectID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memObservations) ListRecentObservations(limit int) ([]model.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Observation
	for i := len(m.observations) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.observations[i])
	}
	return out, nil
}

func (m *memObservations) CountDistinctMalwareObservers(projectID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	for _, o := range m.observations {
		if o.ProjectID == projectID && o.Kind == model.ObservationKindMalware {
			seen[o.ObserverID] = true
		}
	}
	return len(seen), nil
}

type memHealth struct {
	err error
}

var _ store.HealthStore = (*memHealth)(nil)

func (m *memHealth) CheckConnectivity() error {
	return m.err
}
