// Package grove is a stage-based 2D game framework for [Ebitengine].
//
// Grove provides the entity and component model, affine transforms,
// polygon collision (SAT) over a uniform spatial grid, stages with
// deferred removal, scenes, sprite sheets, animations, tweens, cameras and
// tile layers.
//
// # Quick start
//
// Register a scene, stage it, and run the engine:
//
//	g := grove.New(nil)
//	g.Scene("level1", func(s *grove.Stage) {
//		s.MustInsert(grove.NewSprite(grove.Props{X: 100, Y: 100, W: 32, H: 32}))
//	}, grove.StageOptions{})
//	if _, err := g.StageScene("level1", 0, grove.StageOptions{}); err != nil {
//		log.Fatal(err)
//	}
//	log.Fatal(g.Run())
//
// [NewFromConfig] builds the engine and its zap logger from a TOML file
// loaded with [LoadConfig].
//
// # Entities
//
// Every game object is an [Entity]: a property bag ([Props]) plus optional
// components, a container for nested transforms, and OnStep/OnDraw
// callbacks. Entities live on a [Stage]:
//
//	box := grove.NewSprite(grove.Props{X: 10, Y: 10, W: 40, H: 40})
//	box.P.Color, _ = grove.ParseColor("cornflowerblue")
//	stage.MustInsert(box)
//
// Components are registered by name and attached with [Entity.Add]:
//
//	player.Add("2d", "platformerControls", "animation")
//
// # Collision
//
// Each stage keeps a sparse grid of the cells every entity's bounding box
// covers. [Stage.Search] returns the first hit, [Stage.Collide] resolves
// contacts and fires "hit" events, and [Stage.Locate] finds the entity
// under a point. Collision layers such as [NewTileLayer] are checked
// before the grid.
//
// # Removal
//
// [Stage.Remove] takes an entity out of the grid at once but keeps it in
// the stage's lists until the end of the current step, so iteration during
// a step never sees a shifting slice.
//
// ECS integration (via [Donburi] adapter in grove/ecs) forwards collision
// hits into a Donburi world.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package grove
