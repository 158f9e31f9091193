// Package store provides storage abstractions for the index server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation.
// This enables easier testing with mocks and potential support for different
// storage backends.
//
// # Available Stores
//
//   - ProjectsStore: Project lookup, creation, roles and lifecycle status
//   - ReleasesStore: Release and classifier operations
//   - FilesStore: Distribution files and the filename journal
//   - UsersStore: User accounts and API tokens
//   - ObservationsStore: Observer reports
//   - HealthStore: Connectivity checks
//
// # Usage
//
//	projects := gorm.NewProjectsStore(db)
//	project, err := projects.FindProject("my-project")
//	if err != nil {
//	    if errors.Is(err, store.ErrProjectNotFound) {
//	        // Handle not found
//	    }
//	}
package store
