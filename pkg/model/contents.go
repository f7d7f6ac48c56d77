package model

// Super contents are the format-neutral contents bits collision and
// game code work with. Each brush variant maps its native values onto them.
const (
	SuperContentsSolid       = 0x00000001
	SuperContentsWater       = 0x00000002
	SuperContentsSlime       = 0x00000004
	SuperContentsLava        = 0x00000008
	SuperContentsSky         = 0x00000010
	SuperContentsBody        = 0x00000020
	SuperContentsCorpse      = 0x00000040
	SuperContentsNoDrop      = 0x00000080
	SuperContentsPlayerClip  = 0x00000100
	SuperContentsMonsterClip = 0x00000200
	SuperContentsDoNotEnter  = 0x00000400

	SuperContentsLiquidsMask  = SuperContentsLava | SuperContentsSlime | SuperContentsWater
	SuperContentsVisBlockMask = SuperContentsSolid | SuperContentsSky
)

// Material flags describe how a texture is drawn and whether it casts
// shadows.
const (
	MaterialWall = 1 << iota
	MaterialWater
	MaterialSky
	MaterialNoDraw
	MaterialAlpha
	MaterialAdd
	MaterialFullbright
	MaterialLightmap
	MaterialNoShadow
)

// MaterialTransparent is any flag that makes a surface see-through.
const MaterialTransparent = MaterialWater | MaterialAlpha | MaterialAdd
