package seed

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/model"
)

type storeSeed struct {
	name       string
	address    string
	tableCount int
}

// 默认门店与牌桌
var defaultStores = []storeSeed{
	{"大钟寺", "北京市海淀区大钟寺", 4},
	{"五道口", "北京市海淀区五道口购物中心", 8},
	{"三里屯", "北京市朝阳区三里屯", 5},
	{"国贸", "北京市朝阳区国贸CBD", 8},
}

// EnsureDefaults writes the default stores and their tables, skipping
// anything that already exists.
func EnsureDefaults(db *gorm.DB) error {
	for _, s := range defaultStores {
		store := model.Store{Name: s.name}
		err := db.Where(&model.Store{Name: s.name}).
			Attrs(model.Store{Address: s.address}).
			FirstOrCreate(&store).Error
		if err != nil {
			return err
		}
		for i := 1; i <= s.tableCount; i++ {
			table := model.MahjongTable{
				StoreID:     store.ID,
				TableNumber: fmt.Sprintf("%d", i),
			}
			err := db.Where(&model.MahjongTable{StoreID: store.ID, TableNumber: table.TableNumber}).
				FirstOrCreate(&table).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}
