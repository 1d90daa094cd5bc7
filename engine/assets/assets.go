package assets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/vesta-engine/vesta/engine/assets/loaders"
	"github.com/vesta-engine/vesta/engine/core"
)

// TextureData and MeshData are re-exported so callers do not have to
// import the loaders package directly.
type TextureData = loaders.TextureData
type MeshData = loaders.MeshData

// AssetManager resolves asset names below a root directory and watches the
// tree for modifications. A write to any asset fires
// EVENT_CODE_ASSET_WRITTEN with the asset's relative path.
type AssetManager struct {
	root    string
	watcher *fsnotify.Watcher

	mu     sync.Mutex
	closed chan struct{}
}

func NewAssetManager() *AssetManager {
	return &AssetManager{}
}

func (am *AssetManager) Initialize(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		err = fmt.Errorf("failed to resolve assets root %s: %w", root, err)
		core.LogError(err.Error())
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		err = fmt.Errorf("assets root %s is not accessible: %w", abs, err)
		core.LogError(err.Error())
		return err
	}
	am.root = abs
	am.closed = make(chan struct{})

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		err = fmt.Errorf("failed to create asset watcher: %w", err)
		core.LogError(err.Error())
		return err
	}
	am.watcher = watcher

	if err := am.watchTree(abs); err != nil {
		watcher.Close()
		am.watcher = nil
		return err
	}

	go am.dispatchEvents()
	core.LogInfo("asset manager watching %s", abs)
	return nil
}

// watchTree registers every directory under root. fsnotify watches are not
// recursive.
func (am *AssetManager) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if werr := am.watcher.Add(path); werr != nil {
				return fmt.Errorf("failed to watch %s: %w", path, werr)
			}
		}
		return nil
	})
}

func (am *AssetManager) dispatchEvents() {
	for {
		select {
		case <-am.closed:
			return
		case event, ok := <-am.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					am.watcher.Add(event.Name)
					continue
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				rel, err := filepath.Rel(am.root, event.Name)
				if err != nil {
					rel = event.Name
				}
				core.EventFire(core.EventContext{
					Type: core.EVENT_CODE_ASSET_WRITTEN,
					Data: rel,
				})
			}
		case err, ok := <-am.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("asset watcher error: %v", err)
		}
	}
}

func (am *AssetManager) resolve(kind, name string) (string, error) {
	path := filepath.Join(am.root, kind, name)
	if _, err := os.Stat(path); err != nil {
		core.LogError("asset %s/%s not found under %s", kind, name, am.root)
		return "", core.ErrAssetNotFound
	}
	return path, nil
}

// LoadShaderBinary loads a compiled SPIR-V module from the shaders
// directory, returned as 32-bit words.
func (am *AssetManager) LoadShaderBinary(name string) ([]uint32, error) {
	path, err := am.resolve("shaders", name)
	if err != nil {
		return nil, err
	}
	return loaders.LoadShaderWords(path)
}

// LoadTexture loads and decodes an image from the textures directory.
func (am *AssetManager) LoadTexture(name string) (*TextureData, error) {
	path, err := am.resolve("textures", name)
	if err != nil {
		return nil, err
	}
	return loaders.LoadTexture(path)
}

// LoadModel loads a mesh from the models directory.
func (am *AssetManager) LoadModel(name string) (*MeshData, error) {
	path, err := am.resolve("models", name)
	if err != nil {
		return nil, err
	}
	return loaders.LoadModel(path)
}

func (am *AssetManager) Shutdown() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	if am.watcher == nil {
		return nil
	}
	close(am.closed)
	err := am.watcher.Close()
	am.watcher = nil
	return err
}
