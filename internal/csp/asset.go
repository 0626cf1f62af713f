package csp

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/maypok86/otter/v2"
)

// Asset — результат чтения файла стилей: либо хеш содержимого, либо ошибка.
type Asset struct {
	Path string
	Hash string // sha256-<base64>, пусто при ошибке
	Err  error
}

func (a Asset) OK() bool { return a.Err == nil }

// Token — источник в кавычках для style-src.
func (a Asset) Token() string { return "'" + a.Hash + "'" }

// AssetSource читает CSS-файлы по пути.
type AssetSource interface {
	Read(name string) Asset
}

// FSAssets читает файлы из fs.FS (embed или os.DirFS).
// Хеши кэшируются по пути, размеру и времени изменения файла.
type FSAssets struct {
	fsys  fs.FS
	cache *otter.Cache[string, string]
}

func NewFSAssets(fsys fs.FS) *FSAssets {
	return &FSAssets{
		fsys: fsys,
		cache: otter.Must(&otter.Options[string, string]{
			MaximumSize: 1024,
		}),
	}
}

func (a *FSAssets) Read(name string) Asset {
	p := strings.TrimPrefix(path.Clean("/"+name), "/")
	if !fs.ValidPath(p) || p == "." {
		return Asset{Path: name, Err: fmt.Errorf("csp: invalid asset path %q", name)}
	}

	info, err := fs.Stat(a.fsys, p)
	if err != nil {
		return Asset{Path: name, Err: err}
	}
	if info.IsDir() {
		return Asset{Path: name, Err: fmt.Errorf("csp: asset %q is a directory", name)}
	}

	key := fmt.Sprintf("%s|%d|%d", p, info.Size(), info.ModTime().UnixNano())
	if h, ok := a.cache.GetIfPresent(key); ok {
		return Asset{Path: name, Hash: h}
	}

	b, err := fs.ReadFile(a.fsys, p)
	if err != nil {
		return Asset{Path: name, Err: err}
	}
	h := HashBytes(b)
	a.cache.Set(key, h)
	return Asset{Path: name, Hash: h}
}

// StylesheetPath переводит href из <link> в путь внутри FS ассетов:
// "/assets/css/app.css" при prefix "/assets/" -> "css/app.css".
// Внешние URL и пути вне prefix не разрешаются.
func StylesheetPath(href, prefix string) (string, bool) {
	if href == "" || strings.Contains(href, "://") || strings.HasPrefix(href, "//") {
		return "", false
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	prefix = "/" + strings.Trim(prefix, "/") + "/"
	if prefix == "//" {
		prefix = "/"
	}
	clean := path.Clean("/" + href)
	if !strings.HasPrefix(clean, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(clean, prefix)
	if p == "" || !fs.ValidPath(p) {
		return "", false
	}
	return p, true
}
