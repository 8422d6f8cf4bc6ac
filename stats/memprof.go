package stats

import (
	"fmt"
	"os"
	"path"
	"runtime/pprof"
	"time"

	"github.com/omniscale/osmxml/log"
)

// MemProfiler writes a heap profile into dir every interval. Blocks
// forever, run it in a goroutine.
func MemProfiler(dir string, interval time.Duration) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		log.Fatal(err)
	}

	ticker := time.NewTicker(interval)
	i := 0
	for range ticker.C {
		filename := path.Join(
			dir,
			fmt.Sprintf("memprof-%03d.pprof", i),
		)
		f, err := os.Create(filename)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Println("[warn] writing heap profile:", err)
		}
		f.Close()
		i++
	}
}
