package ingest

import (
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/chrischowai/Putonghua-learning/pkg/db"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

// previewKeyPrefix prefixes the KV key holding an image preview.
const previewKeyPrefix = "pinyin_fun_preview_"

// Files is the persisted list of uploaded documents, kept in upload order.
type Files struct {
	kv     db.KV
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFiles creates a file list over kv. logger may be nil.
func NewFiles(kv db.KV, logger *zap.Logger) *Files {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Files{kv: kv, logger: logger}
}

// List returns the files in upload order.
func (f *Files) List() []vocab.LibraryFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Get returns the file with the given id.
func (f *Files) Get(id string) (vocab.LibraryFile, bool) {
	for _, file := range f.List() {
		if file.ID == id {
			return file, true
		}
	}
	return vocab.LibraryFile{}, false
}

// Save replaces the record with the same id, or appends it when new. It is
// used at intake; later changes go through Update.
func (f *Files) Save(file vocab.LibraryFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	files := f.load()
	i := slices.IndexFunc(files, func(x vocab.LibraryFile) bool { return x.ID == file.ID })
	if i >= 0 {
		files[i] = file
	} else {
		files = append(files, file)
	}
	return db.SaveList(f.kv, db.KeyUserFiles, files)
}

// Update replaces the stored record with the same id. It reports false and
// writes nothing when the file is no longer in the list, so a file deleted
// while it was processing stays deleted.
func (f *Files) Update(file vocab.LibraryFile) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	files := f.load()
	i := slices.IndexFunc(files, func(x vocab.LibraryFile) bool { return x.ID == file.ID })
	if i < 0 {
		return false, nil
	}
	files[i] = file
	if err := db.SaveList(f.kv, db.KeyUserFiles, files); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the file and its preview. Unknown ids are ignored.
func (f *Files) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	files := f.load()
	n := len(files)
	files = slices.DeleteFunc(files, func(x vocab.LibraryFile) bool { return x.ID == id })
	if len(files) == n {
		return nil
	}
	if err := db.SaveList(f.kv, db.KeyUserFiles, files); err != nil {
		return err
	}
	f.dropPreview(previewKeyPrefix + id)
	return nil
}

func (f *Files) dropPreview(ref string) {
	if err := f.kv.Delete(ref); err != nil {
		f.logger.Warn("delete preview", zap.String("ref", ref), zap.Error(err))
	}
}

// SavePreview stores image bytes and returns the reference to them.
func (f *Files) SavePreview(id string, data []byte) (string, error) {
	key := previewKeyPrefix + id
	if err := f.kv.Put(key, data); err != nil {
		return "", fmt.Errorf("save preview: %w", err)
	}
	return key, nil
}

// Preview returns the bytes behind a preview reference.
func (f *Files) Preview(ref string) ([]byte, bool) {
	data, ok, err := f.kv.Get(ref)
	if err != nil {
		f.logger.Warn("read preview", zap.String("ref", ref), zap.Error(err))
		return nil, false
	}
	return data, ok
}

func (f *Files) load() []vocab.LibraryFile {
	files, err := db.LoadList[vocab.LibraryFile](f.kv, db.KeyUserFiles)
	if err != nil {
		f.logger.Warn("file list unreadable, treating as empty",
			zap.String("key", db.KeyUserFiles), zap.Error(err))
		return nil
	}
	return files
}
