package chidb

// InsertInTable inserts a (key, payload) row into the table tree rooted
// at root.
func (b *BTree) InsertInTable(root uint32, key uint32, data []byte) error {
	return b.Insert(root, NewTableLeafCell(key, data))
}

// InsertInIndex inserts a (keyIdx, keyPk) entry into the index tree
// rooted at root.
func (b *BTree) InsertInIndex(root uint32, keyIdx, keyPk uint32) error {
	return b.Insert(root, NewIndexLeafCell(keyIdx, keyPk))
}

// Insert inserts cell into the tree rooted at root. If the root node is
// full, the tree grows by one level first: a copy of the root's current
// contents is pushed down into a new child page, the root page itself
// becomes a fresh internal node pointing at that child, and the child is
// then split in place — preserving the root's page number, which callers
// rely on since a table/index directory stores root page numbers, not
// node identities.
//
// A duplicate key is rejected before any of that happens: keyExists runs
// a read-only descent first, so a duplicate insert into a full root
// returns ErrDuplicateKey without growing the tree.
func (b *BTree) Insert(root uint32, cell *Cell) error {
	exists, err := b.keyExists(root, cell.key)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateKey
	}

	rootNode, err := b.LoadNode(root)
	if err != nil {
		return err
	}

	full, err := nodeWouldOverflow(rootNode, cell)
	if err != nil {
		b.FreeNode(rootNode)
		return err
	}

	if full {
		if err := b.growRoot(rootNode); err != nil {
			return err
		}
	} else {
		b.FreeNode(rootNode)
	}

	return b.insertNonFull(root, cell)
}

// keyExists reports whether key is already present anywhere on the
// descent path from npage, without mutating anything. Keys are unique
// across a tree, so an exact match at any level — leaf or internal —
// means the key already exists.
func (b *BTree) keyExists(npage uint32, key uint32) (bool, error) {
	node, err := b.LoadNode(npage)
	if err != nil {
		return false, err
	}

	found, k, err := searchNode(node, key)
	if err != nil {
		b.FreeNode(node)
		return false, err
	}
	if found || node.tag.IsLeaf() {
		b.FreeNode(node)
		return found, nil
	}

	child, err := node.childAt(k)
	b.FreeNode(node)
	if err != nil {
		return false, err
	}
	return b.keyExists(child, key)
}

// growRoot pushes rootNode's entire contents into a freshly allocated
// page, reinitializes the root's own page as an internal node pointing
// at that page via right_page, and splits the pushed-down child so the
// root ends up with exactly one separator and two children.
func (b *BTree) growRoot(rootNode *Node) error {
	oldTag := rootNode.tag
	oldRightPage := rootNode.rightPage
	rootPageNo := rootNode.page.Number

	childPageNo, err := b.pager.AllocatePage()
	if err != nil {
		b.FreeNode(rootNode)
		return err
	}
	childPg, err := b.pager.ReadPage(childPageNo)
	if err != nil {
		b.FreeNode(rootNode)
		return err
	}

	childNode := newEmptyNode(childPg, oldTag)
	if err := copyCellsInto(childNode, rootNode, 0, rootNode.nCells); err != nil {
		b.FreeNode(rootNode)
		return err
	}
	childNode.rightPage = oldRightPage
	if err := b.StoreNode(childNode); err != nil {
		b.FreeNode(rootNode)
		return err
	}
	b.FreeNode(rootNode)

	parentTag := TableInternal
	if !oldTag.IsTable() {
		parentTag = IndexInternal
	}

	rootPg, err := b.pager.ReadPage(rootPageNo)
	if err != nil {
		return err
	}
	newRoot := newEmptyNode(rootPg, parentTag)
	newRoot.rightPage = childPageNo
	if err := b.StoreNode(newRoot); err != nil {
		return err
	}

	_, err = b.Split(rootPageNo, childPageNo, 0)
	return err
}

// insertNonFull descends from npage to find cell's insertion point,
// splitting any full child it must pass through on the way down.
func (b *BTree) insertNonFull(npage uint32, cell *Cell) error {
	node, err := b.LoadNode(npage)
	if err != nil {
		return err
	}

	found, k, err := searchNode(node, cell.key)
	if err != nil {
		b.FreeNode(node)
		return err
	}
	if found {
		b.FreeNode(node)
		return ErrDuplicateKey
	}

	if node.tag.IsLeaf() {
		if err := node.InsertCell(k, cell); err != nil {
			b.FreeNode(node)
			return err
		}
		err := b.StoreNode(node)
		b.FreeNode(node)
		return err
	}

	childPage, err := node.childAt(k)
	if err != nil {
		b.FreeNode(node)
		return err
	}

	childNode, err := b.LoadNode(childPage)
	if err != nil {
		b.FreeNode(node)
		return err
	}

	full, err := nodeWouldOverflow(childNode, cell)
	if err != nil {
		b.FreeNode(childNode)
		b.FreeNode(node)
		return err
	}
	b.FreeNode(childNode)

	if full {
		if _, err := b.Split(npage, childPage, k); err != nil {
			b.FreeNode(node)
			return err
		}

		node2, err := b.LoadNode(npage)
		if err != nil {
			b.FreeNode(node)
			return err
		}
		found2, k2, err := searchNode(node2, cell.key)
		if err != nil {
			b.FreeNode(node2)
			b.FreeNode(node)
			return err
		}
		if found2 {
			b.FreeNode(node2)
			b.FreeNode(node)
			return ErrDuplicateKey
		}
		childPage, err = node2.childAt(k2)
		b.FreeNode(node2)
		if err != nil {
			b.FreeNode(node)
			return err
		}
	}

	b.FreeNode(node)
	return b.insertNonFull(childPage, cell)
}
