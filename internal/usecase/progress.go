package usecase

// Reporter receives discrete progress events during a sweep. Implementations
// must not block; the sweep functions identically when no reporter is wired.
type Reporter interface {
	ResolvingRepositories(platform, identity string)
	ProcessingRepository(index, total int, repository string)
	RepositoryDone(repository string, commits int)
	RepositorySkipped(repository, reason string)
}

type nopReporter struct{}

func (nopReporter) ResolvingRepositories(string, string)  {}
func (nopReporter) ProcessingRepository(int, int, string) {}
func (nopReporter) RepositoryDone(string, int)            {}
func (nopReporter) RepositorySkipped(string, string)      {}

// NopReporter returns a Reporter that ignores every event.
func NopReporter() Reporter {
	return nopReporter{}
}
