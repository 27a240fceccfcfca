package flow

import (
	"github.com/onchainnft/nftcreator/preview"
	"github.com/onchainnft/nftcreator/types"
)

func previewRecorder(out *[]types.ColorParameters) preview.Renderer[types.ColorParameters] {
	return preview.RendererFunc[types.ColorParameters](func(p types.ColorParameters) error {
		*out = append(*out, p)

		return nil
	})
}
