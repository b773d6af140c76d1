package web

// Minimal self-contained dashboard page. It polls the JSON API so run
// history is visible without any build tooling for the frontend.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>VOM - Vote Optimization Manager</title>
<style>
  body { font-family: ui-monospace, monospace; background: #0d1117; color: #c9d1d9; margin: 2rem; }
  h1 { font-size: 1.2rem; }
  table { border-collapse: collapse; margin-top: 1rem; }
  th, td { border: 1px solid #30363d; padding: 0.4rem 0.8rem; text-align: right; }
  th { background: #161b22; }
  td.addr { text-align: left; }
  .rerun { color: #d29922; }
</style>
</head>
<body>
<h1>VOM - Vote Optimization Manager</h1>
<div id="stats"></div>
<table id="runs"><thead>
<tr><th>Run</th><th>Period</th><th>Pools</th><th>Expected USD</th><th>Re-run</th></tr>
</thead><tbody></tbody></table>
<script>
async function refresh() {
  const res = await fetch('/api/runs?limit=20');
  if (!res.ok) return;
  const data = await res.json();
  const body = document.querySelector('#runs tbody');
  body.innerHTML = '';
  for (const run of data.runs || []) {
    const row = document.createElement('tr');
    row.innerHTML = '<td>' + run.run_number + '</td><td>' + run.period +
      '</td><td>' + run.pool_count + '</td><td>' + run.total_expected_usd.toFixed(2) +
      '</td><td class="rerun">' + (run.re_run ? 'yes' : '') + '</td>';
    body.appendChild(row);
  }
  const perf = await fetch('/api/performance');
  if (perf.ok) {
    const s = await perf.json();
    let line = 'runs: ' + s.runs + '  mean EV: $' + s.mean.toFixed(2) + '  stddev: $' + s.std_dev.toFixed(2);
    if (s.concentration !== undefined) {
      line += '  HHI: ' + s.concentration.toFixed(3);
    }
    document.getElementById('stats').textContent = line;
  }
}
refresh();
setInterval(refresh, 30000);
</script>
</body>
</html>
`
