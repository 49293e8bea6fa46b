package notify

// templates.go — plantillas de los reportes HTML estáticos. Van
// embebidas como consts para que el binario sea autocontenido.

import "html/template"

var (
	dailyTmpl    = template.Must(template.New("daily").Parse(dailyHTML))
	backtestTmpl = template.Must(template.New("backtest").Parse(backtestHTML))
	indexTmpl    = template.Must(template.New("index").Parse(indexHTML))
)

const dailyHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} — 每日选股 {{.Date}}</title>
<link rel="stylesheet" href="{{.CSSPath}}">
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p class="sub">每日选股 · {{.Date}} · <a href="{{.IndexPath}}">历史记录</a></p>
</header>
<main>
{{if .Rows}}
<table>
<thead>
<tr><th>#</th><th>代码</th><th>名称</th><th>收盘</th><th>量比</th><th>涨跌%</th><th>J值</th><th>DIFF</th><th>回调</th><th>理由</th></tr>
</thead>
<tbody>
{{range .Rows}}
<tr>
<td>{{.Index}}</td>
<td class="code">{{.Code}}</td>
<td>{{.Name}}</td>
<td class="num">{{.Close}}</td>
<td class="num">{{.VolumeRatio}}</td>
<td class="num {{.ChangeClass}}">{{.PctChange}}</td>
<td class="num">{{.J}}</td>
<td class="num">{{.Diff}}</td>
<td class="num">{{.Pullback}}</td>
<td class="reason">{{.Reason}}</td>
</tr>
{{end}}
</tbody>
</table>
<p class="legend">量比 = 量/均量（&lt;0.70 缩量）· J值 &lt;0 超卖 · DIFF &gt;0 多头 · 回调 = 距前高</p>
{{else}}
<p class="empty">无买点信号</p>
{{end}}
</main>
<footer>
<p>生成于 {{.Generated}} · 仅供研究参考，不构成投资建议</p>
</footer>
</body>
</html>
`

const backtestHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} — 策略回测</title>
<link rel="stylesheet" href="assets/style.css">
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p class="sub">策略回测 · {{.StartDate}} → {{.EndDate}} · <a href="index.html">历史记录</a></p>
</header>
<main>
{{if .HasTrades}}
<section class="stats">
<div class="stat"><span class="label">交易次数</span><span class="value">{{.TotalTrades}}</span></div>
<div class="stat"><span class="label">胜率</span><span class="value">{{.WinRate}}</span></div>
<div class="stat"><span class="label">平均收益</span><span class="value">{{.AvgReturn}}</span></div>
<div class="stat"><span class="label">累计收益</span><span class="value">{{.Cumulative}}</span></div>
<div class="stat"><span class="label">最大盈利</span><span class="value">{{.MaxProfit}}</span></div>
<div class="stat"><span class="label">最大亏损</span><span class="value">{{.MaxLoss}}</span></div>
<div class="stat"><span class="label">盈亏比</span><span class="value">{{.PLRatio}}</span></div>
</section>
<table>
<thead>
<tr><th>#</th><th>代码</th><th>名称</th><th>买入日</th><th>买价</th><th>卖出日</th><th>卖价</th><th>收益%</th><th>持有天</th><th>原因</th></tr>
</thead>
<tbody>
{{range .Rows}}
<tr>
<td>{{.Index}}</td>
<td class="code">{{.Code}}</td>
<td>{{.Name}}</td>
<td>{{.BuyDate}}</td>
<td class="num">{{.BuyPrice}}</td>
<td>{{.SellDate}}</td>
<td class="num">{{.SellPrice}}</td>
<td class="num {{.ReturnClass}}">{{.ReturnPct}}</td>
<td class="num">{{.HoldingDays}}</td>
<td>{{.SellReason}}</td>
</tr>
{{end}}
</tbody>
</table>
<p class="legend">止盈 = take-profit · 止损 = stop-loss · 超时 = max holding</p>
{{else}}
<p class="empty">窗口内没有已平仓的交易</p>
{{end}}
</main>
<footer>
<p>生成于 {{.Generated}} · 仅供研究参考，不构成投资建议</p>
</footer>
</body>
</html>
`

const indexHTML = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="assets/style.css">
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p class="sub">A股日线买点筛选</p>
</header>
<main>
<section>
<h2>最新报告</h2>
<ul class="links">
<li><a href="daily.html">每日选股（最新）</a></li>
<li><a href="backtest.html">策略回测</a></li>
</ul>
</section>
{{if .Dates}}
<section>
<h2>历史选股</h2>
<ul class="links">
{{range .Dates}}
<li><a href="history/{{.}}.html">{{.}}</a></li>
{{end}}
</ul>
</section>
{{end}}
</main>
<footer>
<p>生成于 {{.Generated}} · 仅供研究参考，不构成投资建议</p>
</footer>
</body>
</html>
`

const styleCSS = `:root {
  --bg: #fafafa;
  --fg: #1a1a1a;
  --muted: #707070;
  --border: #e0e0e0;
  --accent: #b42318;
  --up: #b42318;
  --down: #067647;
}

* { box-sizing: border-box; }

body {
  margin: 0 auto;
  max-width: 72rem;
  padding: 1rem 1.5rem 3rem;
  background: var(--bg);
  color: var(--fg);
  font-family: "Helvetica Neue", "PingFang SC", "Microsoft YaHei", sans-serif;
  font-size: 15px;
  line-height: 1.5;
}

header { border-bottom: 2px solid var(--fg); margin-bottom: 1.5rem; }
header h1 { margin: 0.5rem 0 0.2rem; font-size: 1.6rem; }
header .sub { margin: 0 0 0.8rem; color: var(--muted); }

a { color: var(--accent); text-decoration: none; }
a:hover { text-decoration: underline; }

table { width: 100%; border-collapse: collapse; margin: 1rem 0; }
th, td { padding: 0.4rem 0.6rem; border-bottom: 1px solid var(--border); text-align: left; }
th { border-bottom: 2px solid var(--fg); font-weight: 600; white-space: nowrap; }
td.num { text-align: right; font-variant-numeric: tabular-nums; white-space: nowrap; }
td.code { font-family: ui-monospace, monospace; }
td.reason { color: var(--muted); font-size: 0.9em; }
tr:hover td { background: #f0f0f0; }

.up { color: var(--up); }
.down { color: var(--down); }

.stats { display: flex; flex-wrap: wrap; gap: 1rem; margin: 1rem 0; }
.stat { border: 1px solid var(--border); background: #fff; padding: 0.6rem 1rem; min-width: 8rem; }
.stat .label { display: block; color: var(--muted); font-size: 0.8em; }
.stat .value { display: block; font-size: 1.3em; font-variant-numeric: tabular-nums; }

.legend, .empty { color: var(--muted); font-size: 0.9em; }
.empty { padding: 2rem 0; text-align: center; }

.links { list-style: none; padding: 0; }
.links li { padding: 0.2rem 0; }

footer { margin-top: 2rem; border-top: 1px solid var(--border); color: var(--muted); font-size: 0.85em; }
`
