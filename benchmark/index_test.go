package benchmark

import (
	"net/http"
	"os"
	"testing"
)

// Benchmarks against a locally running server:
//
//	warehousectl server &
//	BENCHMARK_PROJECT=demo-pkg go test -bench . ./benchmark/...
//
// BENCHMARK_PROJECT names a project that already has at least one release.

func serverURL() string {
	if url := os.Getenv("BENCHMARK_SERVER_URL"); url != "" {
		return url
	}
	return "http://localhost:8000"
}

func project(b *testing.B) string {
	name := os.Getenv("BENCHMARK_PROJECT")
	if name == "" {
		b.Skip("Set BENCHMARK_PROJECT to a seeded project name")
	}
	return name
}

func BenchmarkSimpleIndex(b *testing.B) {
	base := serverURL()

	b.Run("GET /simple/", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r, _ := http.NewRequest("GET", base+"/simple/", nil)
			resp, err := http.DefaultClient.Do(r)
			if err == nil {
				_ = resp.Body.Close()
			}
		}
	})

	name := project(b)
	b.Run("GET /simple/{name}/", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r, _ := http.NewRequest("GET", base+"/simple/"+name+"/", nil)
			resp, err := http.DefaultClient.Do(r)
			if err == nil {
				_ = resp.Body.Close()
			}
		}
	})
}

func BenchmarkProjectJSON(b *testing.B) {
	base := serverURL()
	name := project(b)

	b.Run("GET /pypi/{name}/json", func(b *testing.B) {
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r, _ := http.NewRequest("GET", base+"/pypi/"+name+"/json", nil)
			resp, err := http.DefaultClient.Do(r)
			if err == nil {
				_ = resp.Body.Close()
			}
		}
	})
}
