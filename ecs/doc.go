// Package ecs provides ECS adapters for grove stages.
//
// [NewDonburiStore] forwards stage collision hits into a [Donburi] world as
// typed events. Subscribe to [CollisionEventType] in your ECS systems to
// receive them. [NewMirror] keeps a Body component per stage entity in sync
// after every step so ECS systems can query positions without touching the
// stage.
//
// Usage:
//
//	world := donburi.NewWorld()
//	stage.SetEventStore(ecs.NewDonburiStore(world))
//	mirror := ecs.NewMirror(world, stage, grove.TypeEnemy)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
