// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repo

import (
	"context"
	"errors"

	"github.com/go-arcade/navmanager/internal/engine/model"
	"github.com/go-arcade/navmanager/pkg/database"
	"gorm.io/gorm"
)

const orderAsc = "`order` ASC, id ASC"

type INavNodeRepository interface {
	Get(ctx context.Context, id int64) (*model.NavNode, error)
	// List returns the scope's nodes plus the nodes shared by all scopes.
	List(ctx context.Context, scope string) ([]model.NavNode, error)
	ListVisible(ctx context.Context, scope string) ([]model.NavNode, error)
	ListChildren(ctx context.Context, scope string, parentID int64) ([]model.NavNode, error)
	// ListByParents returns the direct children of parentIDs in every scope.
	ListByParents(ctx context.Context, parentIDs ...int64) ([]model.NavNode, error)
	// FindGroup / FindByTarget return nil without error when nothing matches.
	FindGroup(ctx context.Context, scope, title string) (*model.NavNode, error)
	FindByTarget(ctx context.Context, scope string, kind model.Kind, target string) (*model.NavNode, error)
	Create(ctx context.Context, node *model.NavNode) error
	Update(ctx context.Context, node *model.NavNode) error
	SetVisible(ctx context.Context, id int64, visible bool) error
	UpdateOrders(ctx context.Context, orders map[int64]int) error
	Delete(ctx context.Context, ids ...int64) error
}

type NavNodeRepo struct {
	database.IDatabase
}

func NewNavNodeRepo(db database.IDatabase) INavNodeRepository {
	return &NavNodeRepo{
		IDatabase: db,
	}
}

func (r *NavNodeRepo) db(ctx context.Context) *gorm.DB {
	return r.Database().WithContext(ctx)
}

func scoped(tx *gorm.DB, scope string) *gorm.DB {
	if scope == "" {
		return tx.Where("panel = ?", "")
	}
	return tx.Where("panel IN ?", []string{scope, ""})
}

// Get 获取节点
func (r *NavNodeRepo) Get(ctx context.Context, id int64) (*model.NavNode, error) {
	var node model.NavNode
	if err := r.db(ctx).Where("id = ?", id).First(&node).Error; err != nil {
		return nil, err
	}
	return &node, nil
}

func (r *NavNodeRepo) List(ctx context.Context, scope string) ([]model.NavNode, error) {
	var nodes []model.NavNode
	err := scoped(r.db(ctx), scope).Order(orderAsc).Find(&nodes).Error
	return nodes, err
}

// ListVisible 获取可见节点
func (r *NavNodeRepo) ListVisible(ctx context.Context, scope string) ([]model.NavNode, error) {
	var nodes []model.NavNode
	err := scoped(r.db(ctx), scope).Where("`show` = ?", true).Order(orderAsc).Find(&nodes).Error
	return nodes, err
}

// ListChildren 根据父节点获取子节点，parentID <= 0 查询顶级节点
func (r *NavNodeRepo) ListChildren(ctx context.Context, scope string, parentID int64) ([]model.NavNode, error) {
	var nodes []model.NavNode
	tx := r.db(ctx).Where("panel = ?", scope)
	if parentID <= model.RootParent {
		tx = tx.Where("parent_id <= ?", model.RootParent)
	} else {
		tx = tx.Where("parent_id = ?", parentID)
	}
	err := tx.Order(orderAsc).Find(&nodes).Error
	return nodes, err
}

func (r *NavNodeRepo) ListByParents(ctx context.Context, parentIDs ...int64) ([]model.NavNode, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var nodes []model.NavNode
	err := r.db(ctx).Where("parent_id IN ?", parentIDs).Order(orderAsc).Find(&nodes).Error
	return nodes, err
}

func (r *NavNodeRepo) FindGroup(ctx context.Context, scope, title string) (*model.NavNode, error) {
	return r.first(r.db(ctx).
		Where("panel = ? AND title = ? AND type = ? AND parent_id <= ?", scope, title, model.KindGroup, model.RootParent))
}

func (r *NavNodeRepo) FindByTarget(ctx context.Context, scope string, kind model.Kind, target string) (*model.NavNode, error) {
	return r.first(r.db(ctx).
		Where("panel = ? AND type = ? AND target = ?", scope, kind, target))
}

func (r *NavNodeRepo) first(tx *gorm.DB) (*model.NavNode, error) {
	var node model.NavNode
	err := tx.Order("id ASC").First(&node).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// Create 创建节点，parent_id 统一为 0 表示顶级
func (r *NavNodeRepo) Create(ctx context.Context, node *model.NavNode) error {
	node.ParentID = model.NormalizeParent(node.ParentID)
	return r.db(ctx).Create(node).Error
}

// Update 全量更新节点
func (r *NavNodeRepo) Update(ctx context.Context, node *model.NavNode) error {
	node.ParentID = model.NormalizeParent(node.ParentID)
	return r.db(ctx).Save(node).Error
}

func (r *NavNodeRepo) SetVisible(ctx context.Context, id int64, visible bool) error {
	res := r.db(ctx).Model(&model.NavNode{}).Where("id = ?", id).Update("show", visible)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateOrders 批量更新排序
func (r *NavNodeRepo) UpdateOrders(ctx context.Context, orders map[int64]int) error {
	if len(orders) == 0 {
		return nil
	}
	return r.db(ctx).Transaction(func(tx *gorm.DB) error {
		for id, order := range orders {
			if err := tx.Model(&model.NavNode{}).Where("id = ?", id).Update("order", order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *NavNodeRepo) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db(ctx).Where("id IN ?", ids).Delete(&model.NavNode{}).Error
}
