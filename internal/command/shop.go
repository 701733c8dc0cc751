package command

import (
	"go.uber.org/zap"

	"github.com/gridmud/server/internal/world"
)

// shopkeeperIn finds the merchant in a room, nil when nobody trades here.
func shopkeeperIn(room *world.Room) *world.Mob {
	if room == nil {
		return nil
	}
	for _, m := range room.Mobs() {
		if m.IsNPC() && m.HasBehavior(world.BehaviorShopkeeper) {
			return m
		}
	}
	return nil
}

// StockShopkeeper moves a freshly spawned merchant's loose inventory onto
// the shelf. Hooked into mob spawning so template contents become wares.
func StockShopkeeper(m *world.Mob) {
	if !m.HasBehavior(world.BehaviorShopkeeper) {
		return
	}
	stock := m.EnsureShopStock()
	for _, e := range m.Contents() {
		if w, ok := e.(world.Wearable); ok && m.IsEquipped(w) {
			continue
		}
		if !portable(e) {
			continue
		}
		e.Base().Move(stock)
	}
}

// HandleList shows the local merchant's wares and prices.
func HandleList(p *Player, _ string, deps *Deps) {
	keeper := shopkeeperIn(p.Mob().Room())
	if keeper == nil {
		p.Send("Nobody here is selling.")
		return
	}
	stock := keeper.ShopStock()
	if stock == nil || len(stock.Contents()) == 0 {
		p.Sendf("%s has nothing to sell.", keeper.Display())
		return
	}
	p.Sendf("%s offers:", keeper.Display())
	for _, e := range stock.Contents() {
		p.Sendf("  %-24s %d coins", e.Base().Display(), e.Base().Value())
	}
}

// HandleBuy purchases one item off the shelf. Templated wares respawn from
// their template so the shelf never empties.
func HandleBuy(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Buy what?")
		return
	}
	m := p.Mob()
	room := m.Room()
	keeper := shopkeeperIn(room)
	if keeper == nil {
		p.Send("Nobody here is selling.")
		return
	}
	stock := keeper.ShopStock()
	if stock == nil {
		p.Sendf("%s has nothing to sell.", keeper.Display())
		return
	}

	n, query := splitQuery(arg)
	sample := stock.FindMatch(query, n)
	if sample == nil {
		p.Sendf("%s doesn't stock that.", keeper.Display())
		return
	}

	price := sample.Base().Value()
	if m.Value() < price {
		p.Send("You can't afford it.")
		return
	}

	bought := sample
	if tid := sample.Base().TemplateID(); tid != "" {
		if tpl := deps.World.FindTemplate(tid); tpl != nil {
			fresh, err := deps.World.CreateFromTemplate(tpl, 0)
			if err == nil {
				bought = fresh
			} else {
				deps.Log.Warn("shop restock failed", zap.String("template", tid), zap.Error(err))
			}
		}
	}

	m.AddValue(-price)
	bought.Base().Move(m)
	p.Sendf("You buy %s for %d coins.", bought.Base().Display(), price)
	if room != nil {
		room.Act(m, "{User} buys "+bought.Base().Display()+".", world.GroupInfo)
	}
}

// HandleSell trades a carried item for half its value. The merchant keeps
// no resale copy.
func HandleSell(p *Player, arg string, deps *Deps) {
	if arg == "" {
		p.Send("Sell what?")
		return
	}
	m := p.Mob()
	room := m.Room()
	keeper := shopkeeperIn(room)
	if keeper == nil {
		p.Send("Nobody here is buying.")
		return
	}

	n, query := splitQuery(arg)
	target := m.FindMatch(query, n)
	if target == nil {
		p.Send("You aren't carrying that.")
		return
	}
	if w, ok := target.(world.Wearable); ok && m.IsEquipped(w) {
		p.Send("Remove it first.")
		return
	}
	if target.Kind() == world.KindCurrency {
		p.Sendf("%s squints at you.", keeper.Display())
		return
	}

	price := target.Base().Value() / 2
	if price <= 0 {
		p.Sendf("%s isn't interested.", keeper.Display())
		return
	}

	display := target.Base().Display()
	target.Base().Destroy()
	m.AddValue(price)
	p.Sendf("You sell %s for %d coins.", display, price)
	if room != nil {
		room.Act(m, "{User} sells "+display+".", world.GroupInfo)
	}
}
