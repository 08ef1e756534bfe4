package assets

import (
	"context"

	"ark-render/internal/graphics/renderer"
)

// LoadTexture decodes path and schedules it as a 2D texture.
func LoadTexture(ctx context.Context, rc *renderer.RenderController, root, path string, params renderer.TextureParameters, strategy renderer.UploadStrategy) (*renderer.Texture, error) {
	bitmaps, err := DecodeFiles(ctx, root, path)
	if err != nil {
		return nil, err
	}
	return rc.CreateTexture2D(bitmaps[0], params, strategy), nil
}

// LoadCubemap decodes six faces and schedules them as one cubemap.
func LoadCubemap(ctx context.Context, rc *renderer.RenderController, root string, faces CubemapFaces, params renderer.TextureParameters, strategy renderer.UploadStrategy) (*renderer.Texture, error) {
	bitmaps, err := DecodeCubemap(ctx, root, faces)
	if err != nil {
		return nil, err
	}
	params.Type = renderer.TextureTypeCubemap
	params.Format = renderer.FormatRGBA8
	size := bitmaps[0].Width
	return rc.CreateTexture(size, size, params, renderer.NewCubemapUploader(bitmaps...), strategy), nil
}
