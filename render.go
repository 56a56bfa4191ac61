package grove

import "github.com/hajimehoshi/ebiten/v2"

// Render draws e and its children onto target. view maps world space to
// screen space. Hidden or fully transparent entities draw nothing,
// children included.
//
// Events fired on e: "predraw" and "draw" around the entity's own image,
// "postdraw" after its children.
func (e *Entity) Render(target *ebiten.Image, view ebiten.GeoM) {
	p := &e.P
	if p.Hidden || p.Opacity <= 0 || e.matrix == nil {
		return
	}

	var op ebiten.DrawImageOptions
	op.GeoM = e.matrix.GeoM()
	op.GeoM.Concat(view)
	if p.Opacity < 1 {
		op.ColorScale.ScaleAlpha(float32(p.Opacity))
	}

	e.Trigger("predraw", target)
	if e.OnDraw != nil {
		e.OnDraw(e, target, &op)
	} else {
		drawSprite(e, target, &op)
	}
	e.Trigger("draw", target)

	if len(e.children) > 0 {
		if p.Sort {
			sortByZ(e.children)
		}
		for _, child := range e.children {
			child.Render(target, view)
		}
	}
	e.Trigger("postdraw", target)

	if e.stage != nil && e.stage.debug {
		drawDebugPolygon(target, e, view)
	}
}

// drawSprite draws the sheet frame, the image asset, or a solid fill, in
// that order of preference, with the top-left corner at (-CX, -CY) in the
// entity's flipped local space.
func drawSprite(e *Entity, target *ebiten.Image, op *ebiten.DrawImageOptions) {
	p := &e.P
	var local ebiten.GeoM
	local.Translate(-p.CX, -p.CY)
	if p.Flip != FlipNone && int(p.Flip) < len(flipArgs) {
		f := flipArgs[p.Flip]
		local.Scale(f[0], f[1])
	}

	var img *ebiten.Image
	if res := e.resources(); res != nil {
		switch sh := res.Sheet(p.Sheet); {
		case sh != nil:
			img = sh.FrameImage(p.Frame)
		case p.Asset != "":
			img = res.Assets.Image(p.Asset)
		}
		if img == nil && (p.Sheet != "" || p.Asset != "") {
			e.stage.debugMissingImage(e)
		}
	}

	draw := *op
	if img == nil {
		if p.Color.IsZero() || p.W <= 0 || p.H <= 0 {
			return
		}
		var fill ebiten.GeoM
		fill.Scale(p.W, p.H)
		fill.Concat(local)
		local = fill
		c := p.Color
		draw.ColorScale.Scale(float32(c.R*c.A), float32(c.G*c.A), float32(c.B*c.A), float32(c.A))
		img = WhitePixel
	}
	local.Concat(op.GeoM)
	draw.GeoM = local
	target.DrawImage(img, &draw)
}
