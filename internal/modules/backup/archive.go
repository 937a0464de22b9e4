package backup

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/folio-space/core/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"gorm.io/gorm"
)

const (
	archiveFormat  = "folio-backup"
	archiveVersion = 1
	manifestFile   = "manifest.json"
	dataDir        = "db"
	insertBatch    = 100
)

type manifest struct {
	Format    string    `json:"format"`
	Version   int       `json:"version"`
	Driver    string    `json:"driver"`
	CreatedAt time.Time `json:"createdAt"`
	Tables    []string  `json:"tables"`
}

// table knows how to dump and reload one model as a stream of BSON documents.
type table struct {
	name string
	dump func(db *gorm.DB) ([]byte, int, error)
	load func(tx *gorm.DB, payload []byte) (int, error)
}

type tabler interface{ TableName() string }

func tableOf[T tabler]() table {
	var zero T
	return table{
		name: zero.TableName(),
		dump: func(db *gorm.DB) ([]byte, int, error) {
			var rows []T
			if err := db.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
				return nil, 0, err
			}
			payload, err := encodeBSONRows(rows)
			return payload, len(rows), err
		},
		load: func(tx *gorm.DB, payload []byte) (int, error) {
			rows, err := decodeBSONRows[T](payload)
			if err != nil {
				return 0, err
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
				return 0, err
			}
			if len(rows) == 0 {
				return 0, nil
			}
			return len(rows), tx.CreateInBatches(rows, insertBatch).Error
		},
	}
}

// tables is every model that travels in an archive. Admin accounts stay out so a
// restore can never lock the operator out.
var tables = []table{
	tableOf[models.Profile](),
	tableOf[models.SocialLink](),
	tableOf[models.Skill](),
	tableOf[models.Experience](),
	tableOf[models.Education](),
	tableOf[models.Project](),
	tableOf[models.Recommendation](),
	tableOf[models.Blog](),
	tableOf[models.NewsletterSubscriber](),
	tableOf[models.ContactRequest](),
	tableOf[models.Content](),
}

func lookupTable(name string) (table, bool) {
	for _, t := range tables {
		if t.name == name {
			return t, true
		}
	}
	return table{}, false
}

func encodeBSONRows[T any](rows []T) ([]byte, error) {
	buffer := bytes.NewBuffer(nil)
	for _, row := range rows {
		b, err := bson.Marshal(row)
		if err != nil {
			return nil, err
		}
		buffer.Write(b)
	}
	return buffer.Bytes(), nil
}

func decodeBSONRows[T any](payload []byte) ([]T, error) {
	rows := make([]T, 0)
	cursor := 0
	for cursor < len(payload) {
		if cursor+4 > len(payload) {
			return nil, fmt.Errorf("invalid bson payload")
		}
		docLen := int(int32(binary.LittleEndian.Uint32(payload[cursor : cursor+4])))
		if docLen <= 0 || cursor+docLen > len(payload) {
			return nil, fmt.Errorf("invalid bson document length")
		}
		var row T
		if err := bson.Unmarshal(payload[cursor:cursor+docLen], &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		cursor += docLen
	}
	return rows, nil
}

// writeArchive dumps every table into a zip with one BSON stream per table.
func writeArchive(db *gorm.DB, now time.Time) (*bytes.Buffer, error) {
	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)

	exported := make([]string, 0, len(tables))
	for _, t := range tables {
		payload, _, err := t.dump(db)
		if err != nil {
			return nil, fmt.Errorf("dump %s: %w", t.name, err)
		}
		f, err := w.Create(path.Join(dataDir, t.name+".bson"))
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(payload); err != nil {
			return nil, err
		}
		exported = append(exported, t.name)
	}

	m := manifest{
		Format:    archiveFormat,
		Version:   archiveVersion,
		Driver:    db.Dialector.Name(),
		CreatedAt: now.UTC(),
		Tables:    exported,
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	mf, err := w.Create(manifestFile)
	if err != nil {
		return nil, err
	}
	if _, err := mf.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf, nil
}

// restoreArchive replaces the contents of every table present in the archive inside
// one transaction. Unknown entries are skipped.
func restoreArchive(db *gorm.DB, data []byte) (map[string]int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errInvalidArchive
	}
	if err := checkManifest(zr); err != nil {
		return nil, err
	}

	restored := map[string]int{}
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, f := range zr.File {
			dir, file := path.Split(f.Name)
			if strings.Trim(dir, "/") != dataDir || !strings.HasSuffix(file, ".bson") {
				continue
			}
			t, ok := lookupTable(strings.TrimSuffix(file, ".bson"))
			if !ok {
				continue
			}
			payload, err := readZipFile(f)
			if err != nil {
				return err
			}
			n, err := t.load(tx, payload)
			if err != nil {
				return fmt.Errorf("restore %s: %w", t.name, err)
			}
			restored[t.name] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

func checkManifest(zr *zip.Reader) error {
	for _, f := range zr.File {
		if f.Name != manifestFile {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return err
		}
		var m manifest
		if err := json.Unmarshal(data, &m); err != nil || m.Format != archiveFormat {
			return errInvalidArchive
		}
		if m.Version > archiveVersion {
			return fmt.Errorf("%w: version %d is newer than supported %d", errInvalidArchive, m.Version, archiveVersion)
		}
		return nil
	}
	return errInvalidArchive
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
