package ir

// NewLoad and NewDeinit mint fresh instructions bound to fn's id sequence
// without inserting them into any block. DI uses these, followed by
// Block.InsertBefore, to build the load+deinit repair pairs spec.md §4.1
// and §4.4 describe; ordinary instruction construction goes through
// Builder instead, which always appends.
func (f *Function) NewLoad(t Type, src Register, path Path, rng Range) *Load {
	return &Load{base: base{id: f.newID(), rng: rng}, Type: t, Src: src, Path: path}
}

func (f *Function) NewDeinit(obj Register, rng Range) *Deinit {
	return &Deinit{base: base{id: f.newID(), rng: rng}, Obj: obj}
}
