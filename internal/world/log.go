package world

import "go.uber.org/zap"

// zap field helpers shared across the package.

func logOID(oid int64) zap.Field { return zap.Int64("oid", oid) }

func logChildOID(oid int64) zap.Field { return zap.Int64("child_oid", oid) }

func logDungeon(id string) zap.Field { return zap.String("dungeon", id) }

func logTemplate(id string) zap.Field { return zap.String("template", id) }

func logRoomRef(ref string) zap.Field { return zap.String("room_ref", ref) }

func logErr(err error) zap.Field { return zap.Error(err) }
