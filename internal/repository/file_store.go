package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	punteroActual = "CURRENT"
	prefijoGen    = "gen-"
)

// FileDocumentStore keeps every collection as <coleccion>.json inside a
// generation directory under dir. The CURRENT file names the live generation.
// SaveAll builds a complete new generation and commits it by renaming one
// pointer file, so after any failure or crash the previous generation is
// still the one CURRENT names.
//
// A dir without CURRENT is read as the flat layout (<coleccion>.json directly
// in dir); the first SaveAll migrates it.
type FileDocumentStore struct {
	dir    string
	rename func(oldpath, newpath string) error
}

func NewFileDocumentStore(dir string) (*FileDocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create dir: %w", err)
	}
	f := &FileDocumentStore{dir: dir, rename: os.Rename}
	if err := f.limpiarGeneraciones(); err != nil {
		return nil, err
	}
	return f, nil
}

// generacionActual returns the live generation directory, or dir itself for
// the flat layout.
func (f *FileDocumentStore) generacionActual() (string, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, punteroActual))
	if errors.Is(err, fs.ErrNotExist) {
		return f.dir, nil
	}
	if err != nil {
		return "", fmt.Errorf("file store: read %s: %w", punteroActual, err)
	}
	name := strings.TrimSpace(string(data))
	if !strings.HasPrefix(name, prefijoGen) || filepath.Base(name) != name {
		return "", fmt.Errorf("file store: %s points to %q", punteroActual, name)
	}
	return filepath.Join(f.dir, name), nil
}

// limpiarGeneraciones removes generations left by saves that never committed.
func (f *FileDocumentStore) limpiarGeneraciones() error {
	actual, err := f.generacionActual()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return fmt.Errorf("file store: list dir: %w", err)
	}
	for _, e := range entries {
		p := filepath.Join(f.dir, e.Name())
		if e.IsDir() && strings.HasPrefix(e.Name(), prefijoGen) && p != actual {
			_ = os.RemoveAll(p)
		}
	}
	return nil
}

func (f *FileDocumentStore) Load(ctx context.Context, coleccion string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gen, err := f.generacionActual()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(gen, coleccion+".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// SaveAll writes docs plus a copy of every untouched collection into a fresh
// generation, then points CURRENT at it. Nothing is visible until that rename.
func (f *FileDocumentStore) SaveAll(ctx context.Context, docs map[string][]byte) error {
	for col := range docs {
		if !esColeccion(col) {
			return fmt.Errorf("file store: unknown collection %q", col)
		}
	}
	anterior, err := f.generacionActual()
	if err != nil {
		return err
	}
	gen, err := os.MkdirTemp(f.dir, prefijoGen)
	if err != nil {
		return fmt.Errorf("file store: create generation: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(gen)
		}
	}()

	for _, col := range Colecciones {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst := filepath.Join(gen, col+".json")
		if doc, ok := docs[col]; ok {
			if err := escribirArchivo(dst, doc); err != nil {
				return fmt.Errorf("file store: write %s: %w", col, err)
			}
			continue
		}
		if err := copiarArchivo(filepath.Join(anterior, col+".json"), dst); err != nil {
			return fmt.Errorf("file store: carry %s: %w", col, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp := filepath.Join(f.dir, punteroActual+".tmp")
	if err := escribirArchivo(tmp, []byte(filepath.Base(gen))); err != nil {
		return fmt.Errorf("file store: write pointer: %w", err)
	}
	if err := f.rename(tmp, filepath.Join(f.dir, punteroActual)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("file store: commit: %w", err)
	}
	committed = true

	if anterior != f.dir {
		if err := os.RemoveAll(anterior); err != nil {
			log.Warn().Err(err).Str("dir", anterior).Msg("file store: old generation not removed")
		}
	}
	return nil
}

func (f *FileDocumentStore) Ping(context.Context) error {
	_, err := os.Stat(f.dir)
	return err
}

func esColeccion(col string) bool {
	for _, c := range Colecciones {
		if c == col {
			return true
		}
	}
	return false
}

func escribirArchivo(path string, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// copiarArchivo copies src to dst. A missing src is a collection never saved
// and is skipped.
func copiarArchivo(src, dst string) error {
	in, err := os.Open(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
