// Package ecs draws [Donburi] entities through bramble's batched renderer.
//
// Entities carrying a [Transform] and a [Sprite] or [Label] are drawn by
// [DrawSystem] in [Sprite.Layer] / [Label.Layer] order. Sprite geometry is
// cached on the component and rebuilt only when the transform is marked
// dirty or the sprite itself changes. [UpdateTweens] animates transforms
// that carry a [Tween].
//
// [Game] bundles a world with both systems and satisfies [bramble.Game]:
//
//	world := donburi.NewWorld()
//	hero := ecs.NewSpriteEntity(world, tex, mgl32.Vec2{100, 100})
//	ecs.StartTween(world.Entry(hero), ecs.TweenPosition, mgl32.Vec2{300, 100}, 2, ease.OutQuad)
//	bramble.Run(ecs.NewGame(world), bramble.DefaultConfig())
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
