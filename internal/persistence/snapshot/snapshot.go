package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const Version = 1

type Header struct {
	Version   int    `json:"version"`
	KitchenID string `json:"kitchen_id"`
	Tick      uint64 `json:"tick"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	TickRate           int `json:"tick_rate_hz"`
	SnapshotEveryTicks int `json:"snapshot_every_ticks,omitempty"`

	// Digests of the content the snapshot was taken with.
	ItemsDigest   string `json:"items_digest"`
	CuttingDigest string `json:"cutting_digest"`
	MenuDigest    string `json:"menu_digest"`

	Players  []PlayerV1  `json:"players"`
	Counters []CounterV1 `json:"counters"`
	Objects  []ObjectV1  `json:"objects"`

	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`

	IDs CountersV1 `json:"id_counters"`
}

type PlayerV1 struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Pos     [3]float64 `json:"pos"`
	Facing  [3]float64 `json:"facing"`
	LastDir [3]float64 `json:"last_dir"`
	Move    [2]float64 `json:"move"`
	LastSeq uint64     `json:"last_seq"`
	// Selected is the counter id targeted at snapshot time, if any.
	Selected    string `json:"selected,omitempty"`
	ResumeToken string `json:"resume_token,omitempty"`
}

type CounterV1 struct {
	ID    string  `json:"id"`
	Cuts  int     `json:"cuts,omitempty"`
	Stock int     `json:"stock,omitempty"`
	Timer float64 `json:"timer,omitempty"`
}

type ObjectV1 struct {
	ID          string   `json:"id"`
	Item        string   `json:"item"`
	Parent      string   `json:"parent"`
	Ingredients []string `json:"ingredients,omitempty"`
}

type CountersV1 struct {
	NextPlayer uint64 `json:"next_player"`
	NextObject uint64 `json:"next_object"`
}

// WriteSnapshot writes to a temp file and renames it into place, so readers
// never see a partial snapshot.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := writeSnapshotFile(tmp, snap); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeSnapshotFile(path string, snap SnapshotV1) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadHeader reads only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()
	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}
