package config

import (
	"runtime"
	"sync"
)

// AssetSettings holds bitmap loading configuration
type AssetSettings struct {
	mu             sync.RWMutex
	decodeWorkers  int
	maxTextureSize int
}

var globalAssetSettings = &AssetSettings{
	decodeWorkers:  max(1, runtime.NumCPU()/2),
	maxTextureSize: 4096,
}

// GetDecodeWorkers returns how many goroutines decode bitmaps
func GetDecodeWorkers() int {
	globalAssetSettings.mu.RLock()
	defer globalAssetSettings.mu.RUnlock()
	return globalAssetSettings.decodeWorkers
}

// SetDecodeWorkers sets the decoder pool size, at least 1
func SetDecodeWorkers(n int) {
	globalAssetSettings.mu.Lock()
	defer globalAssetSettings.mu.Unlock()
	globalAssetSettings.decodeWorkers = max(1, n)
}

// GetMaxTextureSize returns the largest edge a decoded bitmap may keep;
// larger bitmaps are scaled down
func GetMaxTextureSize() int {
	globalAssetSettings.mu.RLock()
	defer globalAssetSettings.mu.RUnlock()
	return globalAssetSettings.maxTextureSize
}

// SetMaxTextureSize sets the edge limit, clamped to [64, 16384]
func SetMaxTextureSize(size int) {
	globalAssetSettings.mu.Lock()
	defer globalAssetSettings.mu.Unlock()
	globalAssetSettings.maxTextureSize = min(max(size, 64), 16384)
}
